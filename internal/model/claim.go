package model

import "time"

// Claim represents an atomic assertion a user makes about themselves
type Claim struct {
	ID         string      `json:"claim_id"`
	UserID     string      `json:"user_id"`               // Owning user
	Topic      Topic       `json:"topic"`                 // Category (skill, employment, ...)
	Summary    string      `json:"content_summary"`       // Retrievable document body
	AccessTags []string    `json:"access_tags,omitempty"` // Empty set is treated as {public}
	Status     ClaimStatus `json:"status"`

	// Confidence is persisted at creation/update time and only recomputed
	// when evidence or attestation state changes, never on read.
	Confidence float64 `json:"confidence_score"`

	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`

	EvidenceIDs []string `json:"evidence_ids,omitempty"` // Supporting evidence references
	EntityIDs   []string `json:"entity_ids,omitempty"`   // Topical entity references
}

// EffectiveConfidence returns the confidence used for filtering and ranking.
// A revoked claim always counts as 0.0 regardless of the stored value.
func (c *Claim) EffectiveConfidence() float64 {
	if c.Status == StatusRevoked {
		return 0.0
	}
	return c.Confidence
}

// VerificationTime returns the timestamp the freshness model decays from:
// verified_at when present, created_at otherwise.
func (c *Claim) VerificationTime() time.Time {
	if c.VerifiedAt != nil {
		return *c.VerifiedAt
	}
	return c.CreatedAt
}

// ClaimStatus tracks the verification lifecycle of a claim
type ClaimStatus string

const (
	StatusPending      ClaimStatus = "pending"
	StatusSelfDeclared ClaimStatus = "self_declared"
	StatusAttested     ClaimStatus = "attested"
	StatusRevoked      ClaimStatus = "revoked" // Terminal; revocation is a transition, not removal
)

// Topic categorizes what a claim is about
type Topic string

const (
	TopicSkill      Topic = "skill"
	TopicEmployment Topic = "employment"
	TopicEducation  Topic = "education"
	TopicProject    Topic = "project"
	TopicSalary     Topic = "salary"
	TopicOther      Topic = "other"
)

// Access tags gate claim visibility per the relationship matrix.
// TagSelf is an explicit owner-only sentinel: the legacy "private" level
// used an empty tag set for this, which collides with the empty-means-public
// rule, so private claims carry TagSelf instead.
const (
	TagPublic      = "public"
	TagFriend      = "friend"
	TagInternal    = "internal"
	TagHRSensitive = "hr_sensitive"
	TagSelf        = "self"
)

// AllAccessTags is the full tag universe a SELF viewer unlocks.
var AllAccessTags = []string{TagPublic, TagFriend, TagInternal, TagHRSensitive, TagSelf}

// ValidAccessTag reports whether tag is a known access tag.
func ValidAccessTag(tag string) bool {
	switch tag {
	case TagPublic, TagFriend, TagInternal, TagHRSensitive, TagSelf:
		return true
	}
	return false
}

// TagsFromAccessLevel converts the legacy access_level field to access tags.
// "private" maps to the explicit self sentinel, not an empty set.
func TagsFromAccessLevel(level string) []string {
	switch level {
	case "public":
		return []string{TagPublic}
	case "private":
		return []string{TagSelf}
	case "connections_only":
		return []string{TagFriend, TagInternal}
	case "recruiter":
		return []string{TagHRSensitive}
	default:
		return []string{TagPublic}
	}
}
