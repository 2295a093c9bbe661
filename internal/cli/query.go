package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimscope/internal/retrieval"
)

var (
	queryViewer        string
	queryTarget        string
	queryTopK          int
	queryMinConfidence float64
	queryJSON          bool
)

// queryCmd answers one question through the full pipeline
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about a user's claims",
	Long: `Run one retrieval query. The answer uses only claims the viewer's
relationship to the target unlocks; an empty answer and a withheld
answer are indistinguishable.

Examples:
  claimscope query "Does Alex know Go?" --viewer blair --target alex
  claimscope query "Salary expectations?" --viewer recruiter-1 --target alex --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		res, err := a.engine.Query(ctx, retrieval.Request{
			Query:         args[0],
			ViewerID:      queryViewer,
			TargetUserID:  queryTarget,
			TopK:          queryTopK,
			MinConfidence: queryMinConfidence,
		})
		if err != nil {
			return err
		}

		if queryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printResult(res)
		return nil
	},
}

func printResult(res *retrieval.Result) {
	fmt.Println(res.Answer)
	if len(res.Sources) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Sources:")
	for _, src := range res.Sources {
		fmt.Printf("  [%.2f] %s (%s, %s)\n", src.Final, src.Summary, src.Topic, src.ConfidenceTier)
	}
}

func init() {
	queryCmd.Flags().StringVar(&queryViewer, "viewer", "", "viewer user ID (required)")
	queryCmd.Flags().StringVar(&queryTarget, "target", "", "target user ID (required)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of claims to retrieve (default from config)")
	queryCmd.Flags().Float64Var(&queryMinConfidence, "min-confidence", 0, "confidence floor (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "emit the full result as JSON")
	_ = queryCmd.MarkFlagRequired("viewer")
	_ = queryCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(queryCmd)
}
