package rebac

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ppiankov/claimscope/internal/model"
)

// The relationship -> unlocked-tags matrix is the only place permission
// logic exists. It is fixed configuration, not per-call business logic.
//
//	SELF        public, friend, internal, hr_sensitive, self
//	STRANGER    public
//	FRIEND      public, friend
//	COLLEAGUE   public, internal
//	RECRUITING  public, hr_sensitive
var matrix = map[model.RelationshipType][]string{
	model.RelSelf:       model.AllAccessTags,
	model.RelStranger:   {model.TagPublic},
	model.RelFriend:     {model.TagPublic, model.TagFriend},
	model.RelColleague:  {model.TagPublic, model.TagInternal},
	model.RelRecruiting: {model.TagPublic, model.TagHRSensitive},
}

// UnlockedTags returns the tags a single relationship type unlocks.
// Unknown types fall back to the STRANGER row (fail-closed).
func UnlockedTags(rel model.RelationshipType) mapset.Set[string] {
	tags, ok := matrix[rel]
	if !ok {
		tags = matrix[model.RelStranger]
	}
	return mapset.NewSet(tags...)
}

// CombineTags unions the unlocked tags of every relationship in the set.
// Adding a relationship can only grow the result, never shrink it.
func CombineTags(rels mapset.Set[model.RelationshipType]) mapset.Set[string] {
	allowed := mapset.NewSet[string]()
	for rel := range rels.Iter() {
		allowed = allowed.Union(UnlockedTags(rel))
	}
	return allowed
}

// AccessScope is the computed permission set for one (viewer, target) pair.
// It is derived fresh per query and must never be reused across pairs.
type AccessScope struct {
	ViewerID      string
	TargetID      string
	Relationships mapset.Set[model.RelationshipType]
	AllowedTags   mapset.Set[string]
	IsSelf        bool
}

// CanAccess reports whether a claim with the given tags is visible under
// this scope. An empty tag set is treated as implicit public.
func (s *AccessScope) CanAccess(claimTags []string) bool {
	if len(claimTags) == 0 {
		return s.AllowedTags.Contains(model.TagPublic)
	}
	for _, tag := range claimTags {
		if s.AllowedTags.Contains(tag) {
			return true
		}
	}
	return false
}
