package score

import (
	"testing"

	"github.com/ppiankov/claimscope/internal/model"
)

func TestConfidenceModel_Score(t *testing.T) {
	m := NewConfidenceModel(model.DefaultConfig().Confidence)

	tests := []struct {
		name           string
		hasEvidence    bool
		hasAttestation bool
		fromTrustedOrg bool
		want           float64
	}{
		{"bare self-declaration", false, false, false, 0.3},
		{"with evidence", true, false, false, 0.5},
		{"attested", false, true, false, 0.9},
		{"attested with evidence", true, true, false, 0.9},
		{"trusted org wins over everything", true, true, true, 1.0},
		{"trusted org alone", false, false, true, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Score(tt.hasEvidence, tt.hasAttestation, tt.fromTrustedOrg)
			if got != tt.want {
				t.Errorf("Score(%v, %v, %v) = %v, want %v",
					tt.hasEvidence, tt.hasAttestation, tt.fromTrustedOrg, got, tt.want)
			}
		})
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{1.0, TierVerified},
		{0.9, TierVerified},
		{0.89, TierHasEvidence},
		{0.5, TierHasEvidence},
		{0.49, TierSelfDeclared},
		{0.3, TierSelfDeclared},
		{0.0, TierSelfDeclared},
	}

	for _, tt := range tests {
		if got := Tier(tt.confidence); got != tt.want {
			t.Errorf("Tier(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}
