package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimscope/internal/claims"
	"github.com/ppiankov/claimscope/internal/model"
)

// claimCmd groups the claim lifecycle subcommands
var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Manage claims",
	Long: `Create claims, attach evidence, attest, and revoke.

Confidence changes only through these lifecycle events; queries never
recompute it.`,
}

var (
	claimUser     string
	claimTopic    string
	claimTags     []string
	claimEvidence []string
	claimExpires  string
)

var claimAddCmd = &cobra.Command{
	Use:   "add [summary]",
	Short: "Create a new claim",
	Long: `Create a self-declared claim. Claims with no tags are implicitly
public; use --tags self for owner-only claims.

Example:
  claimscope claim add "Five years of Go" --user alex --topic skill --tags public`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		in := claims.CreateInput{
			UserID:      claimUser,
			Topic:       model.Topic(claimTopic),
			Summary:     args[0],
			AccessTags:  claimTags,
			EvidenceIDs: claimEvidence,
		}
		if claimExpires != "" {
			t, err := time.Parse("2006-01-02", claimExpires)
			if err != nil {
				return fmt.Errorf("parse --expires: %w", err)
			}
			in.ExpiresAt = &t
		}

		c, err := a.claims.Create(ctx, in)
		if err != nil {
			return err
		}

		fmt.Printf("Created claim %s (confidence %.1f)\n", c.ID, c.Confidence)
		return nil
	},
}

var (
	attestBy         string
	attestTrustedOrg bool
)

var claimAttestCmd = &cobra.Command{
	Use:   "attest [claim-id]",
	Short: "Attest a claim",
	Long: `Record a third-party attestation. Trusted-organization attestations
score higher than peer attestations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		if err := a.claims.Attest(ctx, args[0], attestBy, attestTrustedOrg); err != nil {
			return err
		}
		fmt.Printf("Attested claim %s\n", args[0])
		return nil
	},
}

var claimRevokeCmd = &cobra.Command{
	Use:   "revoke [claim-id]",
	Short: "Revoke a claim",
	Long: `Revoke a claim. It stays visible in the owner's own history but
never appears to any other viewer again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		if err := a.claims.Revoke(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Revoked claim %s\n", args[0])
		return nil
	},
}

var evidenceID string

var claimEvidenceCmd = &cobra.Command{
	Use:   "evidence [claim-id]",
	Short: "Attach evidence to a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		if err := a.claims.AddEvidence(ctx, args[0], evidenceID); err != nil {
			return err
		}
		fmt.Printf("Attached evidence %s to claim %s\n", evidenceID, args[0])
		return nil
	},
}

var listViewer string

var claimListCmd = &cobra.Command{
	Use:   "list [user-id]",
	Short: "List a user's claims",
	Long: `List claims as seen by the given viewer. Only the owner sees
revoked claims.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		viewer := listViewer
		if viewer == "" {
			viewer = args[0]
		}

		list, err := a.claims.List(ctx, args[0], viewer)
		if err != nil {
			return err
		}

		for _, c := range list {
			fmt.Printf("%s  [%s/%s]  conf=%.1f  %s\n", c.ID, c.Topic, c.Status, c.EffectiveConfidence(), c.Summary)
		}
		fmt.Printf("%d claims\n", len(list))
		return nil
	},
}

func init() {
	claimAddCmd.Flags().StringVar(&claimUser, "user", "", "claim owner user ID (required)")
	claimAddCmd.Flags().StringVar(&claimTopic, "topic", "other", "claim topic (skill, employment, education, project, salary, other)")
	claimAddCmd.Flags().StringSliceVar(&claimTags, "tags", nil, "access tags (public, friend, internal, hr_sensitive, self)")
	claimAddCmd.Flags().StringSliceVar(&claimEvidence, "evidence", nil, "evidence IDs")
	claimAddCmd.Flags().StringVar(&claimExpires, "expires", "", "expiry date (YYYY-MM-DD)")
	_ = claimAddCmd.MarkFlagRequired("user")

	claimAttestCmd.Flags().StringVar(&attestBy, "by", "", "attester user ID (required)")
	claimAttestCmd.Flags().BoolVar(&attestTrustedOrg, "trusted-org", false, "attester is a trusted organization")
	_ = claimAttestCmd.MarkFlagRequired("by")

	claimEvidenceCmd.Flags().StringVar(&evidenceID, "id", "", "evidence ID (required)")
	_ = claimEvidenceCmd.MarkFlagRequired("id")

	claimListCmd.Flags().StringVar(&listViewer, "viewer", "", "viewer user ID (defaults to the owner)")

	claimCmd.AddCommand(claimAddCmd)
	claimCmd.AddCommand(claimAttestCmd)
	claimCmd.AddCommand(claimRevokeCmd)
	claimCmd.AddCommand(claimEvidenceCmd)
	claimCmd.AddCommand(claimListCmd)
	rootCmd.AddCommand(claimCmd)
}
