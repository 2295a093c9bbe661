package score

import (
	"github.com/ppiankov/claimscope/internal/model"
)

// ConfidenceModel maps the evidentiary state of a claim to a trust score.
// The ladder is checked in priority order, first match wins:
// trusted organization, attestation, evidence, bare self-declaration.
type ConfidenceModel struct {
	cfg model.ConfidenceConfig
}

// NewConfidenceModel creates a confidence model with the given constants.
func NewConfidenceModel(cfg model.ConfidenceConfig) *ConfidenceModel {
	return &ConfidenceModel{cfg: cfg}
}

// Score returns the confidence for the given evidentiary state. Pure
// function; the result is persisted on the claim and recomputed only on
// evidence-addition or attestation events.
func (m *ConfidenceModel) Score(hasEvidence, hasAttestation, fromTrustedOrg bool) float64 {
	switch {
	case fromTrustedOrg:
		return m.cfg.TrustedOrg
	case hasAttestation:
		return m.cfg.Attested
	case hasEvidence:
		return m.cfg.WithEvidence
	default:
		return m.cfg.SelfDeclared
	}
}

// Confidence tiers shown to the generator so it can hedge language.
const (
	TierVerified     = "verified"
	TierHasEvidence  = "has_evidence"
	TierSelfDeclared = "self_declared"
)

// Tier maps a confidence score to its human-readable marker tier.
func Tier(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return TierVerified
	case confidence >= 0.5:
		return TierHasEvidence
	default:
		return TierSelfDeclared
	}
}
