package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/cache"
	"github.com/ppiankov/claimscope/internal/claims"
	"github.com/ppiankov/claimscope/internal/gate"
	"github.com/ppiankov/claimscope/internal/graph"
	"github.com/ppiankov/claimscope/internal/llm"
	"github.com/ppiankov/claimscope/internal/metrics"
	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
	"github.com/ppiankov/claimscope/internal/retrieval"
	"github.com/ppiankov/claimscope/internal/score"
	"github.com/ppiankov/claimscope/internal/vector"
	"github.com/ppiankov/claimscope/internal/worker"
)

// app bundles the wired components behind the CLI commands
type app struct {
	cfg       *model.Config
	log       *logrus.Logger
	store     *graph.Store
	index     *vector.Index
	resolver  *rebac.Resolver
	claims    *claims.Service
	engine    *retrieval.Engine
	generator llm.Provider
	metrics   *metrics.Metrics
}

// newApp connects to the collaborators and wires the engine. The graph and
// vector stores must be reachable; the generator is optional.
func newApp(ctx context.Context, cfg *model.Config, log *logrus.Logger) (*app, error) {
	store, err := graph.NewStore(ctx, cfg.Graph, log)
	if err != nil {
		return nil, fmt.Errorf("connect graph store: %w", err)
	}
	if err := store.BuildIndices(ctx); err != nil {
		log.WithError(err).Warn("building graph indices")
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
	embedCache := cache.NewMemoryCache(24*time.Hour, 10*time.Minute)
	embedder := vector.NewEmbedder(os.Getenv("OPENAI_API_KEY"), cfg.Vector, embedCache, limiter)

	index, err := vector.NewIndex(cfg.Vector, embedder, limiter, log)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("connect vector store: %w", err)
	}
	if err := index.EnsureCollection(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("ensure vector collection: %w", err)
	}

	// A missing generator degrades to extractive answers; a misconfigured
	// one is still an error.
	llmCfg := llm.ConfigFromModel(cfg.LLM)
	if llmCfg.Provider != "ollama" && llmCfg.APIKey == "" {
		log.WithField("provider", llmCfg.Provider).Warn("no API key for generator, answers will be extractive")
		llmCfg.Provider = ""
	}
	generator, err := llm.NewProvider(llmCfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("configure generator: %w", err)
	}

	m := metrics.NewDefault()
	confidence := score.NewConfidenceModel(cfg.Confidence)
	freshness := score.NewFreshnessModel(cfg.Freshness)
	resolver := rebac.NewResolver(store, log)

	engine := retrieval.NewEngine(
		store,
		resolver,
		gate.NewGatekeeper(cfg.Confidence.MinForRetrieval),
		index,
		score.NewRanker(cfg.Weights, freshness),
		generator,
		cfg.Retrieval,
		log,
		m,
	)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		index:     index,
		resolver:  resolver,
		claims:    claims.NewService(store, index, resolver, confidence, log),
		engine:    engine,
		generator: generator,
		metrics:   m,
	}, nil
}

// Close releases collaborator connections
func (a *app) Close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		a.log.WithError(err).Warn("closing graph store")
	}
}

// setupApp is the common preamble of commands that need the full stack
func setupApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, newLogger())
}
