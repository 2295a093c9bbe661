package model

import (
	"errors"
	"testing"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config must validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Weights.Semantic = -0.1 }},
		{"all-zero weights", func(c *Config) { c.Weights = WeightConfig{} }},
		{"confidence above one", func(c *Config) { c.Confidence.Attested = 1.5 }},
		{"negative confidence", func(c *Config) { c.Confidence.SelfDeclared = -0.3 }},
		{"min score above one", func(c *Config) { c.Freshness.MinScore = 2 }},
		{"negative fresh period", func(c *Config) { c.Freshness.FreshPeriodDays = -1 }},
		{"zero half life", func(c *Config) { c.Freshness.HalfLifeDays = 0 }},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_Validate_WeightsNeedNotSumToOne(t *testing.T) {
	// Non-normalized weights are the ranker's job to repair, not an error
	cfg := DefaultConfig()
	cfg.Weights = WeightConfig{Semantic: 2, Confidence: 2, Freshness: 1}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Scaled weights must validate: %v", err)
	}
}
