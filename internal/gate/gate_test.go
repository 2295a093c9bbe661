package gate

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
)

func scopeFor(rels ...model.RelationshipType) *rebac.AccessScope {
	set := mapset.NewSet(rels...)
	return &rebac.AccessScope{
		ViewerID:      "viewer",
		TargetID:      "alex",
		Relationships: set,
		AllowedTags:   rebac.CombineTags(set),
		IsSelf:        set.Contains(model.RelSelf),
	}
}

func claim(id, userID string, tags []string, status model.ClaimStatus, confidence float64) *model.Claim {
	return &model.Claim{
		ID:         id,
		UserID:     userID,
		AccessTags: tags,
		Status:     status,
		Confidence: confidence,
	}
}

func TestGatekeeper_Floor(t *testing.T) {
	g := NewGatekeeper(0.3)

	if got := g.Floor(0); got != 0.3 {
		t.Errorf("Zero request must use the default floor, got %v", got)
	}
	if got := g.Floor(-1); got != 0.3 {
		t.Errorf("Negative request must use the default floor, got %v", got)
	}
	if got := g.Floor(0.7); got != 0.7 {
		t.Errorf("Explicit floor must win, got %v", got)
	}
}

func TestGatekeeper_ScopeFilter(t *testing.T) {
	g := NewGatekeeper(0.3)

	claims := []*model.Claim{
		claim("mine", "alex", []string{model.TagPublic}, model.StatusAttested, 0.9),
		claim("theirs", "casey", []string{model.TagPublic}, model.StatusAttested, 0.9),
	}

	eligible, stats := g.EligibleCandidates(claims, "alex", scopeFor(model.RelStranger), 0.3)

	if len(eligible) != 1 || eligible[0].ID != "mine" {
		t.Errorf("Another user's claims must never survive, got %v", eligible)
	}
	if stats.Scope != 1 {
		t.Errorf("Expected 1 scope-filtered claim, got %d", stats.Scope)
	}
}

func TestGatekeeper_RevokedFilter(t *testing.T) {
	g := NewGatekeeper(0.3)

	claims := []*model.Claim{
		claim("active", "alex", []string{model.TagPublic}, model.StatusAttested, 0.9),
		claim("revoked", "alex", []string{model.TagPublic}, model.StatusRevoked, 0.9),
	}

	// Revoked claims are invisible even to the owner's own queries
	eligible, stats := g.EligibleCandidates(claims, "alex", scopeFor(model.RelSelf), 0.3)

	if len(eligible) != 1 || eligible[0].ID != "active" {
		t.Errorf("Revoked claims must never be candidates, got %v", eligible)
	}
	if stats.Revoked != 1 {
		t.Errorf("Expected 1 revoked-filtered claim, got %d", stats.Revoked)
	}
}

func TestGatekeeper_ConfidenceFloor(t *testing.T) {
	g := NewGatekeeper(0.3)

	claims := []*model.Claim{
		claim("at-floor", "alex", []string{model.TagPublic}, model.StatusSelfDeclared, 0.3),
		claim("below", "alex", []string{model.TagPublic}, model.StatusSelfDeclared, 0.2),
	}

	eligible, stats := g.EligibleCandidates(claims, "alex", scopeFor(model.RelStranger), 0.3)

	if len(eligible) != 1 || eligible[0].ID != "at-floor" {
		t.Errorf("Exactly-at-floor passes, below-floor does not; got %v", eligible)
	}
	if stats.Confidence != 1 {
		t.Errorf("Expected 1 confidence-filtered claim, got %d", stats.Confidence)
	}
}

func TestGatekeeper_AccessFilter(t *testing.T) {
	g := NewGatekeeper(0.3)

	claims := []*model.Claim{
		claim("pub", "alex", []string{model.TagPublic}, model.StatusAttested, 0.9),
		claim("hr", "alex", []string{model.TagHRSensitive}, model.StatusAttested, 0.9),
		claim("friend", "alex", []string{model.TagFriend}, model.StatusAttested, 0.9),
	}

	tests := []struct {
		name  string
		scope *rebac.AccessScope
		want  []string
	}{
		{"stranger", scopeFor(model.RelStranger), []string{"pub"}},
		{"friend", scopeFor(model.RelFriend), []string{"pub", "friend"}},
		{"recruiting", scopeFor(model.RelRecruiting), []string{"pub", "hr"}},
		{"self", scopeFor(model.RelSelf), []string{"pub", "hr", "friend"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eligible, _ := g.EligibleCandidates(claims, "alex", tt.scope, 0.3)
			if len(eligible) != len(tt.want) {
				t.Fatalf("Expected %d claims, got %d", len(tt.want), len(eligible))
			}
			for i, id := range tt.want {
				if eligible[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, eligible[i].ID)
				}
			}
		})
	}
}

func TestGatekeeper_PerRequestFloor(t *testing.T) {
	g := NewGatekeeper(0.3)

	claims := []*model.Claim{
		claim("low", "alex", []string{model.TagPublic}, model.StatusSelfDeclared, 0.3),
		claim("high", "alex", []string{model.TagPublic}, model.StatusAttested, 0.9),
	}

	eligible, _ := g.EligibleCandidates(claims, "alex", scopeFor(model.RelStranger), g.Floor(0.8))
	if len(eligible) != 1 || eligible[0].ID != "high" {
		t.Errorf("Raised floor must exclude low-confidence claims, got %v", eligible)
	}
}

func TestGatekeeper_EmptyInput(t *testing.T) {
	g := NewGatekeeper(0.3)

	eligible, stats := g.EligibleCandidates(nil, "alex", scopeFor(model.RelSelf), 0.3)
	if len(eligible) != 0 {
		t.Errorf("Expected no candidates, got %d", len(eligible))
	}
	if stats != (Stats{}) {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}
