package rebac

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/model"
)

// RelationshipFinder is the graph collaborator. It returns every stored edge
// type between the two users; an empty set (not an error) when no edges
// exist, and a connectivity error on transport failure.
type RelationshipFinder interface {
	FindRelationships(ctx context.Context, viewerID, targetID string) ([]model.RelationshipType, error)
}

// Resolver computes relationship sets and access scopes for
// (viewer, target) pairs.
type Resolver struct {
	finder RelationshipFinder
	log    *logrus.Logger
}

// NewResolver creates a resolver backed by the given graph collaborator.
func NewResolver(finder RelationshipFinder, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{finder: finder, log: log}
}

// Relationships returns the relationship set connecting viewer to target.
// viewer == target returns {SELF} without touching the graph. A graph
// failure degrades to {STRANGER}: fail-closed, never fail-open.
func (r *Resolver) Relationships(ctx context.Context, viewerID, targetID string) mapset.Set[model.RelationshipType] {
	if viewerID == targetID {
		return mapset.NewSet(model.RelSelf)
	}

	found, err := r.finder.FindRelationships(ctx, viewerID, targetID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"viewer": viewerID,
			"target": targetID,
			"error":  err,
		}).Warn("relationship lookup failed, degrading to STRANGER")
		return mapset.NewSet(model.RelStranger)
	}

	if len(found) == 0 {
		return mapset.NewSet(model.RelStranger)
	}
	return mapset.NewSet(found...)
}

// Scope resolves the access scope for viewer looking at target. The result
// is valid for the lifetime of a single request only.
func (r *Resolver) Scope(ctx context.Context, viewerID, targetID string) *AccessScope {
	rels := r.Relationships(ctx, viewerID, targetID)
	return &AccessScope{
		ViewerID:      viewerID,
		TargetID:      targetID,
		Relationships: rels,
		AllowedTags:   CombineTags(rels),
		IsSelf:        rels.Contains(model.RelSelf),
	}
}
