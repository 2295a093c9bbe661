// Package gate implements the gatekeeper filter: the eligibility stage that
// runs before any vector search sees a claim.
package gate

import (
	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
)

// Stats counts how many claims each filter removed, for instrumentation.
type Stats struct {
	Scope      int // owned by someone other than the target
	Revoked    int
	Confidence int
	Access     int
}

// Gatekeeper reduces a claim set to the candidates a viewer may retrieve.
// It is a pure function over its inputs and is re-evaluated per request;
// results are never cached, because a cache keyed on target alone would
// leak claims across viewers.
type Gatekeeper struct {
	defaultFloor float64
}

// NewGatekeeper creates a gatekeeper with the given default confidence floor.
func NewGatekeeper(defaultFloor float64) *Gatekeeper {
	return &Gatekeeper{defaultFloor: defaultFloor}
}

// Floor resolves a per-request confidence floor; non-positive values fall
// back to the configured default.
func (g *Gatekeeper) Floor(requested float64) float64 {
	if requested <= 0 {
		return g.defaultFloor
	}
	return requested
}

// EligibleCandidates applies three filters in strict order:
//
//  1. Scope: only claims owned by targetID survive. A query about user A
//     must never surface user B's claims however well they match.
//  2. Confidence floor: revoked claims are dropped unconditionally, then
//     anything under minConfidence.
//  3. Access: the precomputed scope predicate for (viewer, target).
//
// The order matters for correctness, not just performance: access tags are
// only meaningful on claims already known to belong to the target.
func (g *Gatekeeper) EligibleCandidates(claims []*model.Claim, targetID string, scope *rebac.AccessScope, minConfidence float64) ([]*model.Claim, Stats) {
	var stats Stats
	eligible := make([]*model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.UserID != targetID {
			stats.Scope++
			continue
		}
		if c.Status == model.StatusRevoked {
			stats.Revoked++
			continue
		}
		if c.EffectiveConfidence() < minConfidence {
			stats.Confidence++
			continue
		}
		if !scope.CanAccess(c.AccessTags) {
			stats.Access++
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, stats
}
