package score

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/claimscope/internal/model"
)

// scoreTolerance is the floating tolerance for weight-sum checks and
// final-score tie-breaks.
const scoreTolerance = 1e-3

// ScoredClaim is an ephemeral ranking record produced for one ranking pass.
type ScoredClaim struct {
	Claim      *model.Claim
	Semantic   float64
	Confidence float64
	Freshness  float64
	Final      float64
}

// Ranker fuses semantic similarity, confidence and freshness into one final
// score per candidate and produces a deterministic total ordering.
type Ranker struct {
	wSem, wConf, wFresh float64
	freshness           *FreshnessModel
}

// NewRanker creates a ranker with the given weights and freshness model.
// Weights that do not sum to 1.0 within tolerance are normalized
// proportionally; negative or all-zero weights must be rejected by
// Config.Validate before construction.
func NewRanker(weights model.WeightConfig, freshness *FreshnessModel) *Ranker {
	wSem, wConf, wFresh := weights.Semantic, weights.Confidence, weights.Freshness
	total := wSem + wConf + wFresh
	if math.Abs(total-1.0) > scoreTolerance {
		wSem /= total
		wConf /= total
		wFresh /= total
	}
	return &Ranker{wSem: wSem, wConf: wConf, wFresh: wFresh, freshness: freshness}
}

// Rank scores each candidate against its semantic similarity and returns the
// records sorted by final score descending. Ties within tolerance order by
// freshness descending, then claim ID ascending. Pure transformation;
// nothing is persisted.
func (r *Ranker) Rank(candidates []*model.Claim, semantic []float64, now time.Time) ([]ScoredClaim, error) {
	if len(candidates) != len(semantic) {
		return nil, fmt.Errorf("rank: %d candidates but %d semantic scores", len(candidates), len(semantic))
	}

	scored := make([]ScoredClaim, 0, len(candidates))
	for i, c := range candidates {
		fresh, err := r.freshness.ScoreClaim(c, now)
		if err != nil {
			return nil, fmt.Errorf("rank claim %s: %w", c.ID, err)
		}
		conf := c.EffectiveConfidence()
		scored = append(scored, ScoredClaim{
			Claim:      c,
			Semantic:   semantic[i],
			Confidence: conf,
			Freshness:  fresh,
			Final:      r.wSem*semantic[i] + r.wConf*conf + r.wFresh*fresh,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if math.Abs(a.Final-b.Final) > scoreTolerance {
			return a.Final > b.Final
		}
		if math.Abs(a.Freshness-b.Freshness) > scoreTolerance {
			return a.Freshness > b.Freshness
		}
		return a.Claim.ID < b.Claim.ID
	})

	return scored, nil
}
