// Package retrieval runs the access-scoped retrieval pipeline: resolve the
// viewer's scope, filter the target's claims through the gatekeeper, search
// only the surviving candidates, rank, and assemble an answer.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/gate"
	"github.com/ppiankov/claimscope/internal/llm"
	"github.com/ppiankov/claimscope/internal/metrics"
	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
	"github.com/ppiankov/claimscope/internal/score"
	"github.com/ppiankov/claimscope/internal/vector"
)

// Stage names the pipeline states. A query moves through them in order;
// an empty candidate set short-circuits from filtering straight to empty.
type Stage string

const (
	StageScoping    Stage = "scoping"
	StageFiltering  Stage = "filtering"
	StageSearching  Stage = "searching"
	StageRanking    Stage = "ranking"
	StageAssembling Stage = "assembling"
	StageDone       Stage = "done"
	StageEmpty      Stage = "empty"
)

// Query outcomes as reported in results and metrics
const (
	OutcomeAnswered = "answered"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// EmptyAnswer is returned when nothing accessible matches. It is fixed
// text so a viewer cannot distinguish "does not exist" from "not allowed".
const EmptyAnswer = "No accessible information is available for this request."

// ClaimSource loads a user's claims from the graph
type ClaimSource interface {
	ClaimsByUser(ctx context.Context, userID string) ([]*model.Claim, error)
}

// Searcher performs semantic search restricted to an explicit candidate
// universe. It must never search outside the given IDs.
type Searcher interface {
	Search(ctx context.Context, queryText string, candidateIDs []string, k int) ([]vector.Hit, error)
}

// Request is one retrieval query. ViewerID and TargetUserID may be equal;
// that is the SELF case and unlocks every access tag. Revoked claims stay
// out of retrieval for every viewer, the owner included.
type Request struct {
	Query         string  `json:"query"`
	TargetUserID  string  `json:"target_user_id"`
	ViewerID      string  `json:"viewer_id"`
	TopK          int     `json:"top_k,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// Source is one claim that backed the answer, with its score breakdown
type Source struct {
	ClaimID        string  `json:"claim_id"`
	Topic          string  `json:"topic"`
	Summary        string  `json:"summary"`
	ConfidenceTier string  `json:"confidence_tier"`
	Semantic       float64 `json:"semantic_score"`
	Confidence     float64 `json:"confidence_score"`
	Freshness      float64 `json:"freshness_score"`
	Final          float64 `json:"final_score"`
}

// Result is the assembled answer plus provenance
type Result struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Outcome  string   `json:"outcome"`
	Stage    Stage    `json:"stage"`
	Duration string   `json:"duration,omitempty"`
}

// Engine orchestrates one retrieval pass per request. It holds no
// per-request state; scopes and filter decisions are never reused across
// viewers.
type Engine struct {
	claims    ClaimSource
	resolver  *rebac.Resolver
	gate      *gate.Gatekeeper
	searcher  Searcher
	ranker    *score.Ranker
	generator llm.Provider
	topK      int
	log       *logrus.Logger
	metrics   *metrics.Metrics
}

// NewEngine creates a retrieval engine. generator may be nil, in which case
// answers are assembled extractively from the top-ranked claims.
func NewEngine(
	claims ClaimSource,
	resolver *rebac.Resolver,
	gk *gate.Gatekeeper,
	searcher Searcher,
	ranker *score.Ranker,
	generator llm.Provider,
	cfg model.RetrievalConfig,
	log *logrus.Logger,
	m *metrics.Metrics,
) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		claims:    claims,
		resolver:  resolver,
		gate:      gk,
		searcher:  searcher,
		ranker:    ranker,
		generator: generator,
		topK:      cfg.TopK,
		log:       log,
		metrics:   m,
	}
}

// Query runs the full pipeline for one request
func (e *Engine) Query(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := e.run(ctx, req)

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.QueryDuration.Observe(elapsed.Seconds())
		outcome := OutcomeError
		if err == nil {
			outcome = res.Outcome
		}
		e.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		return nil, err
	}
	res.Duration = elapsed.Round(time.Millisecond).String()
	return res, nil
}

func (e *Engine) run(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if req.TargetUserID == "" {
		return nil, fmt.Errorf("target user ID is required")
	}
	if req.ViewerID == "" {
		return nil, fmt.Errorf("viewer ID is required")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = e.topK
	}

	log := e.log.WithFields(logrus.Fields{
		"viewer_id": req.ViewerID,
		"target_id": req.TargetUserID,
	})

	// SCOPING: resolve the viewer's access scope. Lookup failures degrade
	// to STRANGER inside the resolver, so this never errors.
	log.WithField("stage", StageScoping).Debug("resolving access scope")
	scope := e.resolver.Scope(ctx, req.ViewerID, req.TargetUserID)

	all, err := e.claims.ClaimsByUser(ctx, req.TargetUserID)
	if err != nil {
		e.collaboratorFailure("graph")
		return nil, fmt.Errorf("load claims for %s: %w", req.TargetUserID, err)
	}

	// FILTERING: the gatekeeper is the only component that decides
	// visibility. Everything downstream sees only survivors.
	log.WithField("stage", StageFiltering).Debug("filtering candidates")
	floor := e.gate.Floor(req.MinConfidence)
	candidates, stats := e.gate.EligibleCandidates(all, req.TargetUserID, scope, floor)
	e.recordFilterStats(stats)

	if len(candidates) == 0 {
		// EMPTY short-circuit: no search, no generation. The viewer
		// learns nothing about what was filtered or why.
		log.WithField("stage", StageEmpty).Info("no eligible candidates")
		return &Result{
			Answer:  EmptyAnswer,
			Sources: []Source{},
			Outcome: OutcomeEmpty,
			Stage:   StageEmpty,
		}, nil
	}

	// SEARCHING: semantic search constrained to the eligible IDs. The
	// full corpus is never searched.
	log.WithField("stage", StageSearching).Debug("searching candidates")
	byID := make(map[string]*model.Claim, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	hits, err := e.searcher.Search(ctx, req.Query, ids, topK)
	if err != nil {
		// A search failure is a hard error, not an empty result; the
		// two must stay distinguishable to callers.
		e.collaboratorFailure("vector")
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if len(hits) == 0 {
		log.WithField("stage", StageEmpty).Info("no semantic matches among eligible candidates")
		return &Result{
			Answer:  EmptyAnswer,
			Sources: []Source{},
			Outcome: OutcomeEmpty,
			Stage:   StageEmpty,
		}, nil
	}

	// RANKING
	log.WithField("stage", StageRanking).Debug("ranking matches")
	matched := make([]*model.Claim, 0, len(hits))
	semantic := make([]float64, 0, len(hits))
	for _, h := range hits {
		c, ok := byID[h.ClaimID]
		if !ok {
			// The index returned something outside the candidate
			// universe; drop it rather than leak it.
			log.WithField("claim_id", h.ClaimID).Warn("search hit outside candidate set, dropped")
			continue
		}
		matched = append(matched, c)
		semantic = append(semantic, h.Score)
	}

	ranked, err := e.ranker.Rank(matched, semantic, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	// ASSEMBLING
	log.WithField("stage", StageAssembling).Debug("assembling answer")
	sources := make([]Source, 0, len(ranked))
	for _, sc := range ranked {
		sources = append(sources, Source{
			ClaimID:        sc.Claim.ID,
			Topic:          string(sc.Claim.Topic),
			Summary:        sc.Claim.Summary,
			ConfidenceTier: score.Tier(sc.Confidence),
			Semantic:       sc.Semantic,
			Confidence:     sc.Confidence,
			Freshness:      sc.Freshness,
			Final:          sc.Final,
		})
	}

	answer, err := e.assemble(ctx, req.Query, ranked)
	if err != nil {
		e.collaboratorFailure("llm")
		return nil, fmt.Errorf("assemble answer: %w", err)
	}

	log.WithFields(logrus.Fields{
		"stage":   StageDone,
		"sources": len(sources),
	}).Info("query answered")
	return &Result{
		Answer:  answer,
		Sources: sources,
		Outcome: OutcomeAnswered,
		Stage:   StageDone,
	}, nil
}

// assemble turns the ranked claims into prose. With a generator the claims
// become grounded context for the model; without one the top summaries are
// joined directly.
func (e *Engine) assemble(ctx context.Context, query string, ranked []score.ScoredClaim) (string, error) {
	if e.generator == nil {
		lines := make([]string, 0, len(ranked))
		for _, sc := range ranked {
			lines = append(lines, sc.Claim.Summary)
		}
		return strings.Join(lines, " "), nil
	}

	resp, err := e.generator.Generate(ctx, llm.GenerateRequest{
		System: assembleSystemPrompt,
		Prompt: buildPrompt(query, ranked),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

const assembleSystemPrompt = `You answer questions about a person using only the claims provided.
Match your language to each claim's verification tier:
- verified: state the fact plainly
- has_evidence: hedge lightly, e.g. "has evidence of" or "reportedly"
- self_declared: attribute it, e.g. "self-reports" or "says that"
Never mention claims that are not in the context, and never speculate.
If the claims do not answer the question, say so briefly.`

func buildPrompt(query string, ranked []score.ScoredClaim) string {
	var b strings.Builder
	b.WriteString("Claims:\n")
	for _, sc := range ranked {
		fmt.Fprintf(&b, "- [%s] %s (topic: %s)\n", score.Tier(sc.Confidence), sc.Claim.Summary, sc.Claim.Topic)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

func (e *Engine) collaboratorFailure(name string) {
	if e.metrics != nil {
		e.metrics.CollaboratorFailures.WithLabelValues(name).Inc()
	}
}

func (e *Engine) recordFilterStats(stats gate.Stats) {
	if e.metrics == nil {
		return
	}
	e.metrics.ClaimsFiltered.WithLabelValues("scope").Add(float64(stats.Scope))
	e.metrics.ClaimsFiltered.WithLabelValues("revoked").Add(float64(stats.Revoked))
	e.metrics.ClaimsFiltered.WithLabelValues("confidence").Add(float64(stats.Confidence))
	e.metrics.ClaimsFiltered.WithLabelValues("access").Add(float64(stats.Access))
}
