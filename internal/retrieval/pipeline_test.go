package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/gate"
	"github.com/ppiankov/claimscope/internal/llm"
	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
	"github.com/ppiankov/claimscope/internal/score"
	"github.com/ppiankov/claimscope/internal/vector"
)

type fakeClaims struct {
	claims []*model.Claim
	err    error
}

func (f *fakeClaims) ClaimsByUser(_ context.Context, _ string) ([]*model.Claim, error) {
	return f.claims, f.err
}

type fakeFinder struct {
	rels []model.RelationshipType
	err  error
}

func (f *fakeFinder) FindRelationships(_ context.Context, _, _ string) ([]model.RelationshipType, error) {
	return f.rels, f.err
}

type fakeSearcher struct {
	hits     []vector.Hit
	err      error
	calls    int
	lastIDs  []string
	lastTopK int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, candidateIDs []string, k int) ([]vector.Hit, error) {
	f.calls++
	f.lastIDs = candidateIDs
	f.lastTopK = k
	return f.hits, f.err
}

type fakeGenerator struct {
	calls    int
	lastReq  llm.GenerateRequest
	response string
	err      error
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return true }

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.response, Model: "fake"}, nil
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testClaim(id, userID, summary string, tags []string, confidence float64, ageDays int) *model.Claim {
	verified := time.Now().UTC().AddDate(0, 0, -ageDays)
	return &model.Claim{
		ID:         id,
		UserID:     userID,
		Topic:      model.TopicSkill,
		Summary:    summary,
		AccessTags: tags,
		Status:     model.StatusAttested,
		Confidence: confidence,
		VerifiedAt: &verified,
		CreatedAt:  verified,
	}
}

func newTestEngine(claims ClaimSource, finder rebac.RelationshipFinder, searcher Searcher, gen llm.Provider) *Engine {
	cfg := model.DefaultConfig()
	log := quietLog()
	return NewEngine(
		claims,
		rebac.NewResolver(finder, log),
		gate.NewGatekeeper(cfg.Confidence.MinForRetrieval),
		searcher,
		score.NewRanker(cfg.Weights, score.NewFreshnessModel(cfg.Freshness)),
		gen,
		cfg.Retrieval,
		log,
		nil,
	)
}

func TestEngine_Query_Answered(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Ships Go services", []string{model.TagPublic}, 0.9, 30),
		testClaim("c2", "alex", "Mentors juniors", []string{model.TagPublic}, 0.9, 30),
	}}
	searcher := &fakeSearcher{hits: []vector.Hit{
		{ClaimID: "c1", Score: 0.92},
		{ClaimID: "c2", Score: 0.41},
	}}
	gen := &fakeGenerator{response: "Alex ships Go services."}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, gen)

	res, err := engine.Query(context.Background(), Request{
		Query:        "Does Alex know Go?",
		TargetUserID: "alex",
		ViewerID:     "blair",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if res.Outcome != OutcomeAnswered {
		t.Errorf("Expected outcome answered, got %s", res.Outcome)
	}
	if res.Answer != "Alex ships Go services." {
		t.Errorf("Unexpected answer: %q", res.Answer)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(res.Sources))
	}
	if res.Sources[0].ClaimID != "c1" {
		t.Errorf("Expected highest-semantic claim first, got %s", res.Sources[0].ClaimID)
	}
	if res.Sources[0].ConfidenceTier != score.TierVerified {
		t.Errorf("Expected verified tier, got %s", res.Sources[0].ConfidenceTier)
	}
	if gen.calls != 1 {
		t.Errorf("Expected 1 generator call, got %d", gen.calls)
	}
}

func TestEngine_Query_EmptyNeverSearchesOrGenerates(t *testing.T) {
	// Stranger viewer, friend-only claims: everything is filtered out
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Private note", []string{model.TagFriend}, 0.9, 10),
	}}
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{response: "should not be called"}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, gen)

	res, err := engine.Query(context.Background(), Request{
		Query:        "What do you know about Alex?",
		TargetUserID: "alex",
		ViewerID:     "stranger",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if res.Outcome != OutcomeEmpty {
		t.Errorf("Expected outcome empty, got %s", res.Outcome)
	}
	if res.Answer != EmptyAnswer {
		t.Errorf("Expected fixed empty answer, got %q", res.Answer)
	}
	if searcher.calls != 0 {
		t.Errorf("Searcher must not run on empty candidate set, got %d calls", searcher.calls)
	}
	if gen.calls != 0 {
		t.Errorf("Generator must not run on empty candidate set, got %d calls", gen.calls)
	}
}

func TestEngine_Query_SearchRestrictedToEligibleIDs(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("pub", "alex", "Public skill", []string{model.TagPublic}, 0.9, 10),
		testClaim("fr", "alex", "Friend-only detail", []string{model.TagFriend}, 0.9, 10),
	}}
	searcher := &fakeSearcher{hits: []vector.Hit{{ClaimID: "pub", Score: 0.8}}}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, nil)

	if _, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "stranger",
	}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(searcher.lastIDs) != 1 || searcher.lastIDs[0] != "pub" {
		t.Errorf("Search universe must be the eligible IDs only, got %v", searcher.lastIDs)
	}
}

func TestEngine_Query_SearchFailureIsHardError(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Go", []string{model.TagPublic}, 0.9, 10),
	}}
	searcher := &fakeSearcher{err: vector.ErrUnavailable}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, nil)

	_, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair",
	})
	if err == nil {
		t.Fatal("Expected hard error on search failure, got nil")
	}
	if !errors.Is(err, vector.ErrUnavailable) {
		t.Errorf("Expected wrapped ErrUnavailable, got %v", err)
	}
}

func TestEngine_Query_NoSemanticMatchesIsEmpty(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Go", []string{model.TagPublic}, 0.9, 10),
	}}
	searcher := &fakeSearcher{hits: nil}
	gen := &fakeGenerator{}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, gen)

	res, err := engine.Query(context.Background(), Request{
		Query: "underwater basket weaving", TargetUserID: "alex", ViewerID: "blair",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Outcome != OutcomeEmpty {
		t.Errorf("Expected outcome empty, got %s", res.Outcome)
	}
	if gen.calls != 0 {
		t.Errorf("Generator must not run without matches, got %d calls", gen.calls)
	}
}

func TestEngine_Query_HitOutsideCandidateSetDropped(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Go", []string{model.TagPublic}, 0.9, 10),
	}}
	searcher := &fakeSearcher{hits: []vector.Hit{
		{ClaimID: "c1", Score: 0.7},
		{ClaimID: "other-user-claim", Score: 0.99},
	}}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, nil)

	res, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0].ClaimID != "c1" {
		t.Errorf("Hit outside candidate universe must be dropped, got %v", res.Sources)
	}
}

func TestEngine_Query_TopKTruncation(t *testing.T) {
	var cs []*model.Claim
	var hits []vector.Hit
	for _, id := range []string{"a", "b", "c", "d"} {
		cs = append(cs, testClaim(id, "alex", "Claim "+id, []string{model.TagPublic}, 0.9, 10))
		hits = append(hits, vector.Hit{ClaimID: id, Score: 0.5})
	}

	engine := newTestEngine(&fakeClaims{claims: cs}, &fakeFinder{}, &fakeSearcher{hits: hits}, nil)

	res, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair", TopK: 2,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.Sources) != 2 {
		t.Errorf("Expected 2 sources after truncation, got %d", len(res.Sources))
	}
}

func TestEngine_Query_GeneratorFailure(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Go", []string{model.TagPublic}, 0.9, 10),
	}}
	searcher := &fakeSearcher{hits: []vector.Hit{{ClaimID: "c1", Score: 0.8}}}
	gen := &fakeGenerator{err: errors.New("model overloaded")}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, gen)

	if _, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair",
	}); err == nil {
		t.Fatal("Expected error when generation fails, got nil")
	}
}

func TestEngine_Query_ExtractiveWithoutGenerator(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Ships Go services.", []string{model.TagPublic}, 0.9, 10),
	}}
	searcher := &fakeSearcher{hits: []vector.Hit{{ClaimID: "c1", Score: 0.8}}}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, nil)

	res, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if res.Answer != "Ships Go services." {
		t.Errorf("Expected extractive answer from summaries, got %q", res.Answer)
	}
}

func TestEngine_Query_PromptCarriesTiers(t *testing.T) {
	claims := &fakeClaims{claims: []*model.Claim{
		testClaim("c1", "alex", "Go in production", []string{model.TagPublic}, 0.9, 10),
	}}
	self := testClaim("c2", "alex", "Learning Zig", []string{model.TagPublic}, 0.3, 10)
	self.Status = model.StatusSelfDeclared
	claims.claims = append(claims.claims, self)

	searcher := &fakeSearcher{hits: []vector.Hit{
		{ClaimID: "c1", Score: 0.9},
		{ClaimID: "c2", Score: 0.8},
	}}
	gen := &fakeGenerator{response: "ok"}

	engine := newTestEngine(claims, &fakeFinder{}, searcher, gen)

	if _, err := engine.Query(context.Background(), Request{
		Query: "skills", TargetUserID: "alex", ViewerID: "blair",
	}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	prompt := gen.lastReq.Prompt
	for _, want := range []string{"[verified]", "[self_declared]", "Go in production", "skills"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
	if gen.lastReq.System == "" {
		t.Error("Expected system prompt to be set")
	}
}

func TestEngine_Query_Validation(t *testing.T) {
	engine := newTestEngine(&fakeClaims{}, &fakeFinder{}, &fakeSearcher{}, nil)

	tests := []struct {
		name string
		req  Request
	}{
		{"missing query", Request{TargetUserID: "alex", ViewerID: "blair"}},
		{"missing target", Request{Query: "q", ViewerID: "blair"}},
		{"missing viewer", Request{Query: "q", TargetUserID: "alex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Query(context.Background(), tt.req); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
