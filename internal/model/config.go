package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is wrapped by all configuration validation failures so
// callers can fail fast at startup rather than at query time.
var ErrInvalidConfig = errors.New("invalid configuration")

// WeightConfig holds the score-fusion weights. They are normalized by the
// ranker when they do not sum to exactly 1.0, so uniform scaling is harmless;
// negative or all-zero weights are rejected at validation.
type WeightConfig struct {
	Semantic   float64 `yaml:"semantic" mapstructure:"semantic"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	Freshness  float64 `yaml:"freshness" mapstructure:"freshness"`
}

// ConfidenceConfig holds the evidence-ladder confidence constants.
type ConfidenceConfig struct {
	SelfDeclared float64 `yaml:"self_declared" mapstructure:"self_declared"`
	WithEvidence float64 `yaml:"with_evidence" mapstructure:"with_evidence"`
	Attested     float64 `yaml:"attested" mapstructure:"attested"`
	TrustedOrg   float64 `yaml:"trusted_org" mapstructure:"trusted_org"`

	// MinForRetrieval is the gatekeeper confidence floor.
	MinForRetrieval float64 `yaml:"min_for_retrieval" mapstructure:"min_for_retrieval"`
}

// FreshnessConfig holds the time-decay parameters.
type FreshnessConfig struct {
	FreshPeriodDays int     `yaml:"fresh_period_days" mapstructure:"fresh_period_days"`
	HalfLifeDays    int     `yaml:"half_life_days" mapstructure:"half_life_days"`
	MinScore        float64 `yaml:"min_score" mapstructure:"min_score"`
}

// RetrievalConfig holds query-pipeline defaults.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// GraphConfig holds Neo4j connection settings.
type GraphConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
}

// VectorConfig holds Qdrant and embedding settings.
type VectorConfig struct {
	Host           string `yaml:"host" mapstructure:"host"`
	Port           int    `yaml:"port" mapstructure:"port"`
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	UseTLS         bool   `yaml:"use_tls" mapstructure:"use_tls"`
	Collection     string `yaml:"collection" mapstructure:"collection"`
	EmbeddingModel string `yaml:"embedding_model" mapstructure:"embedding_model"`
	EmbeddingDim   uint64 `yaml:"embedding_dim" mapstructure:"embedding_dim"`
}

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" = disabled
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ConcurrencyConfig holds worker and rate-limit settings.
type ConcurrencyConfig struct {
	BatchWorkers      int     `yaml:"batch_workers" mapstructure:"batch_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// Config is the complete, explicit configuration object. Components receive
// it (or a sub-struct) at construction; nothing reads ambient globals.
type Config struct {
	Weights     WeightConfig      `yaml:"weights" mapstructure:"weights"`
	Confidence  ConfidenceConfig  `yaml:"confidence" mapstructure:"confidence"`
	Freshness   FreshnessConfig   `yaml:"freshness" mapstructure:"freshness"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Graph       GraphConfig       `yaml:"graph" mapstructure:"graph"`
	Vector      VectorConfig      `yaml:"vector" mapstructure:"vector"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: WeightConfig{
			Semantic:   0.40,
			Confidence: 0.40,
			Freshness:  0.20,
		},
		Confidence: ConfidenceConfig{
			SelfDeclared:    0.3,
			WithEvidence:    0.5,
			Attested:        0.9,
			TrustedOrg:      1.0,
			MinForRetrieval: 0.3,
		},
		Freshness: FreshnessConfig{
			FreshPeriodDays: 180,
			HalfLifeDays:    365,
			MinScore:        0.1,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Graph: GraphConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
		Vector: VectorConfig{
			Host:           "localhost",
			Port:           6334,
			Collection:     "claims",
			EmbeddingModel: "text-embedding-3-small",
			EmbeddingDim:   1536,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 512,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:      4,
			RequestsPerSecond: 10,
			Burst:             5,
		},
	}
}

// Validate checks the scoring configuration once, at startup. Weight
// normalization is the ranker's job; validation only rejects what
// normalization cannot repair.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Semantic < 0 || w.Confidence < 0 || w.Freshness < 0 {
		return fmt.Errorf("%w: ranking weights must be non-negative, got (%g, %g, %g)",
			ErrInvalidConfig, w.Semantic, w.Confidence, w.Freshness)
	}
	if w.Semantic+w.Confidence+w.Freshness < 1e-9 {
		return fmt.Errorf("%w: ranking weights must not all be zero", ErrInvalidConfig)
	}

	for name, v := range map[string]float64{
		"confidence.self_declared":     c.Confidence.SelfDeclared,
		"confidence.with_evidence":     c.Confidence.WithEvidence,
		"confidence.attested":          c.Confidence.Attested,
		"confidence.trusted_org":       c.Confidence.TrustedOrg,
		"confidence.min_for_retrieval": c.Confidence.MinForRetrieval,
		"freshness.min_score":          c.Freshness.MinScore,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalidConfig, name, v)
		}
	}

	if c.Freshness.FreshPeriodDays < 0 {
		return fmt.Errorf("%w: freshness.fresh_period_days must be >= 0", ErrInvalidConfig)
	}
	if c.Freshness.HalfLifeDays <= 0 {
		return fmt.Errorf("%w: freshness.half_life_days must be > 0", ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be > 0", ErrInvalidConfig)
	}
	return nil
}
