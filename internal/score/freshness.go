package score

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/claimscope/internal/model"
)

// ErrMalformedTimestamp is returned when a timestamp cannot be normalized
// for age arithmetic. It is never silently coerced to "now" or to nil.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

const hoursPerDay = 24

// FreshnessModel maps a claim's verification timestamp and optional
// expiration to a recency score in [MinScore, 1.0] using logarithmic decay.
//
// Logarithmic rather than exponential decay keeps very old but still
// plausibly true facts (a decade-old degree) ranked low instead of
// effectively invisible.
type FreshnessModel struct {
	cfg model.FreshnessConfig
}

// NewFreshnessModel creates a freshness model with the given decay constants.
func NewFreshnessModel(cfg model.FreshnessConfig) *FreshnessModel {
	return &FreshnessModel{cfg: cfg}
}

// Score computes the freshness of a claim verified at verifiedAt, optionally
// expiring at expiresAt, as of now. A nil verifiedAt means unknown age and
// scores the floor: missing metadata is stale, not fresh.
func (m *FreshnessModel) Score(verifiedAt, expiresAt *time.Time, now time.Time) (float64, error) {
	ref, err := normalize(now, "now")
	if err != nil {
		return 0, err
	}

	if verifiedAt == nil {
		return m.cfg.MinScore, nil
	}
	verified, err := normalize(*verifiedAt, "verified_at")
	if err != nil {
		return 0, err
	}

	if expiresAt != nil {
		expires, err := normalize(*expiresAt, "expires_at")
		if err != nil {
			return 0, err
		}
		if ref.After(expires) {
			return m.cfg.MinScore, nil
		}
	}

	ageDays := ref.Sub(verified).Hours() / hoursPerDay
	if ageDays <= float64(m.cfg.FreshPeriodDays) {
		return 1.0, nil
	}

	overFresh := ageDays - float64(m.cfg.FreshPeriodDays)
	decay := 1.0 / (1.0 + math.Log1p(overFresh/float64(m.cfg.HalfLifeDays)))
	return math.Max(decay, m.cfg.MinScore), nil
}

// ScoreClaim computes freshness for a claim, decaying from verified_at with
// created_at as the fallback.
func (m *FreshnessModel) ScoreClaim(c *model.Claim, now time.Time) (float64, error) {
	t := c.VerificationTime()
	if t.IsZero() {
		// No verification or creation time at all: unknown age.
		return m.cfg.MinScore, nil
	}
	return m.Score(&t, c.ExpiresAt, now)
}

// normalize converts a timestamp to UTC for subtraction. Zero values where a
// concrete time is expected indicate an upstream decode failure.
func normalize(t time.Time, field string) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %s is a zero value", ErrMalformedTimestamp, field)
	}
	return t.UTC(), nil
}
