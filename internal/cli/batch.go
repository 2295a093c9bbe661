package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimscope/internal/retrieval"
)

var (
	batchFile        string
	batchViewer      string
	batchTarget      string
	batchConcurrency int
)

// batchCmd runs a file of questions concurrently
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many questions from a file",
	Long: `Run every question in a file (one per line, # starts a comment)
against one viewer/target pair. Questions run concurrently; each one
re-resolves the viewer's access scope independently.

Example:
  claimscope batch -f questions.txt --viewer blair --target alex`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = a.cfg.Concurrency.BatchWorkers
		}

		processor := retrieval.NewBatchProcessor(a.engine, concurrency)
		outcomes, err := processor.ProcessFile(ctx, batchViewer, batchTarget, batchFile)
		if err != nil {
			return err
		}

		failed := 0
		for _, o := range outcomes {
			fmt.Printf("Q: %s\n", o.Question)
			if o.Error != nil {
				failed++
				fmt.Printf("   error: %v\n\n", o.Error)
				continue
			}
			fmt.Printf("   %s\n\n", o.Result.Answer)
		}

		fmt.Printf("%d questions, %d failed\n", len(outcomes), failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d questions failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file with one question per line (required)")
	batchCmd.Flags().StringVar(&batchViewer, "viewer", "", "viewer user ID (required)")
	batchCmd.Flags().StringVar(&batchTarget, "target", "", "target user ID (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent queries (default from config)")
	_ = batchCmd.MarkFlagRequired("file")
	_ = batchCmd.MarkFlagRequired("viewer")
	_ = batchCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(batchCmd)
}
