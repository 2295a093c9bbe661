package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimscope/internal/model"
)

// seedCmd loads a demo dataset for local experimentation
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo dataset",
	Long: `Create demo users, relationships and claims in the graph and vector
stores. The dataset covers every relationship type and access tag so
scope behavior can be explored end to end:

  bob  --RECRUITING--> goby, alice
  goby <--FRIEND-->    alice
  goby <--COLLEAGUE--> alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := setupApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		for _, u := range seedUsers {
			if err := a.store.SaveUser(ctx, u.id, u.name); err != nil {
				return fmt.Errorf("seed user %s: %w", u.id, err)
			}
			fmt.Printf("✓ user %s\n", u.id)
		}

		for _, r := range seedRelationships {
			if err := a.store.SaveRelationship(ctx, r.from, r.to, r.rel); err != nil {
				return fmt.Errorf("seed relationship %s-%s: %w", r.from, r.to, err)
			}
			fmt.Printf("✓ (%s)-[:%s]->(%s)\n", r.from, r.rel, r.to)
		}

		for _, c := range seedClaims() {
			if err := a.store.SaveClaim(ctx, c); err != nil {
				return fmt.Errorf("seed claim %s: %w", c.ID, err)
			}
			if err := a.index.IndexClaim(ctx, c); err != nil {
				return fmt.Errorf("index claim %s: %w", c.ID, err)
			}
			fmt.Printf("✓ claim %s (%v)\n", c.ID, c.AccessTags)
		}

		fmt.Println("\nDemo data loaded. Try:")
		fmt.Println(`  claimscope query "Does Goby know Python?" --viewer alice --target goby`)
		fmt.Println(`  claimscope query "Salary expectations?" --viewer bob --target goby`)
		fmt.Println(`  claimscope query "Salary expectations?" --viewer alice --target goby`)
		return nil
	},
}

var seedUsers = []struct {
	id, name string
}{
	{"goby", "Goby"},
	{"alice", "Alice Nguyen"},
	{"bob", "Bob Tran"},
	{"org_techcorp", "TechCorp"},
}

var seedRelationships = []struct {
	from, to string
	rel      model.RelationshipType
}{
	{"bob", "goby", model.RelRecruiting},
	{"bob", "alice", model.RelRecruiting},
	{"goby", "alice", model.RelFriend},
	{"goby", "alice", model.RelColleague},
}

func seedClaims() []*model.Claim {
	now := time.Now().UTC()
	recent := now.AddDate(0, -1, 0)
	lastYear := now.AddDate(-1, 0, 0)
	twoYears := now.AddDate(-2, 0, 0)
	certExpiry := now.AddDate(1, 6, 0)

	return []*model.Claim{
		{
			ID: "goby-claim-001", UserID: "goby", Topic: model.TopicSkill,
			Summary:    "Five years of Python, building backend services with FastAPI and Django, REST APIs serving thousands of users.",
			AccessTags: []string{model.TagPublic},
			Status:     model.StatusAttested, Confidence: 1.0,
			VerifiedAt: &recent, CreatedAt: lastYear,
			EvidenceIDs: []string{"ev-goby-002"},
			EntityIDs:   []string{"tech_python", "framework_fastapi"},
		},
		{
			ID: "goby-claim-002", UserID: "goby", Topic: model.TopicSkill,
			Summary:    "Builds retrieval-augmented generation systems; shipped a chatbot on LangChain, GPT-4 and a vector database.",
			AccessTags: []string{model.TagPublic},
			Status:     model.StatusSelfDeclared, Confidence: 0.5,
			CreatedAt:   recent,
			EvidenceIDs: []string{"ev-goby-001"},
			EntityIDs:   []string{"skill_rag"},
		},
		{
			ID: "goby-claim-003", UserID: "goby", Topic: model.TopicEmployment,
			Summary:    "Senior backend developer at TechCorp 2022-2024, designed microservices for an e-commerce system with 50,000 users.",
			AccessTags: []string{model.TagInternal, model.TagFriend},
			Status:     model.StatusAttested, Confidence: 1.0,
			VerifiedAt: &recent, CreatedAt: lastYear,
			EntityIDs: []string{"org_techcorp"},
		},
		{
			ID: "goby-claim-004", UserID: "goby", Topic: model.TopicSalary,
			Summary:    "Expected salary $3,000-4,000/month for a senior backend or AI engineer role, negotiable for interesting projects.",
			AccessTags: []string{model.TagHRSensitive},
			Status:     model.StatusSelfDeclared, Confidence: 0.3,
			CreatedAt: recent,
		},
		{
			ID: "goby-claim-005", UserID: "goby", Topic: model.TopicEducation,
			Summary:    "AWS Solutions Architect Associate certification, cloud-native system design and deployment.",
			AccessTags: []string{model.TagPublic, model.TagHRSensitive},
			Status:     model.StatusSelfDeclared, Confidence: 0.5,
			CreatedAt: lastYear, ExpiresAt: &certExpiry,
			EvidenceIDs: []string{"ev-goby-003"},
		},
		{
			ID: "goby-claim-006", UserID: "goby", Topic: model.TopicEducation,
			Summary:    "Completed the Machine Learning Specialization on Coursera.",
			AccessTags: []string{model.TagPublic},
			Status:     model.StatusSelfDeclared, Confidence: 0.3,
			CreatedAt: twoYears,
		},
		{
			ID: "goby-claim-007", UserID: "goby", Topic: model.TopicOther,
			Summary:    "Private journal: exploring a career change into robotics.",
			AccessTags: []string{model.TagSelf},
			Status:     model.StatusSelfDeclared, Confidence: 0.3,
			CreatedAt: recent,
		},
		{
			ID: "alice-claim-001", UserID: "alice", Topic: model.TopicSkill,
			Summary:    "Senior frontend developer: React, TypeScript and Next.js, four years building startup UI.",
			AccessTags: []string{model.TagPublic},
			Status:     model.StatusAttested, Confidence: 0.9,
			VerifiedAt: &recent, CreatedAt: lastYear,
			EvidenceIDs: []string{"ev-alice-001"},
		},
		{
			ID: "alice-claim-002", UserID: "alice", Topic: model.TopicSalary,
			Summary:    "Open to offers above $3,500/month for staff frontend roles.",
			AccessTags: []string{model.TagHRSensitive},
			Status:     model.StatusSelfDeclared, Confidence: 0.3,
			CreatedAt: recent,
		},
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
