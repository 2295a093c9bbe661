// Package graph is the Neo4j adapter: it owns users, relationship edges and
// claim records. The retrieval core only ever reads from it during a query.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/model"
)

// ErrUnavailable distinguishes transport failures from empty results. An
// empty relationship set is a normal answer; this is not.
var ErrUnavailable = errors.New("graph store unavailable")

// Store wraps the Neo4j driver with the queries the engine needs.
type Store struct {
	driver neo4j.DriverWithContext
	log    *logrus.Logger
}

// NewStore connects to Neo4j and verifies connectivity.
func NewStore(ctx context.Context, cfg model.GraphConfig, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.WithField("uri", cfg.URI).Info("connected to graph store")
	return &Store{driver: driver, log: log}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// BuildIndices creates lookup indices. Individual failures are logged and
// skipped since the index may already exist.
func (s *Store) BuildIndices(ctx context.Context) error {
	for _, q := range buildIndexQueries {
		if _, err := s.run(ctx, q, nil); err != nil {
			s.log.WithError(err).WithField("query", q).Warn("index creation skipped")
		}
	}
	return nil
}

// FindRelationships returns every stored edge type between viewer and
// target. No edges is an empty slice, not an error.
func (s *Store) FindRelationships(ctx context.Context, viewerID, targetID string) ([]model.RelationshipType, error) {
	result, err := s.run(ctx, findRelationshipsQuery, map[string]any{
		"viewer_id": viewerID,
		"target_id": targetID,
	})
	if err != nil {
		return nil, err
	}

	var rels []model.RelationshipType
	for _, rec := range result.Records {
		if v, ok := rec.Get("relationship_type"); ok {
			if name, ok := v.(string); ok {
				rels = append(rels, model.RelationshipType(name))
			}
		}
	}
	return rels, nil
}

// SaveUser upserts a user node.
func (s *Store) SaveUser(ctx context.Context, userID, displayName string) error {
	_, err := s.run(ctx, saveUserQuery, map[string]any{
		"user_id":      userID,
		"display_name": displayName,
	})
	return err
}

// SaveRelationship upserts a directed edge of one of the stored types.
// Symmetric types (FRIEND, COLLEAGUE) are matched undirected at read time,
// so one edge is enough.
func (s *Store) SaveRelationship(ctx context.Context, fromID, toID string, rel model.RelationshipType) error {
	valid := false
	for _, t := range model.StoredRelationshipTypes {
		if rel == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("relationship type %q is not storable", rel)
	}

	_, err := s.run(ctx, fmt.Sprintf(saveRelationshipQueryTmpl, rel), map[string]any{
		"from_id": fromID,
		"to_id":   toID,
	})
	return err
}

// SaveClaim upserts a claim node and its MAKES_CLAIM edge.
func (s *Store) SaveClaim(ctx context.Context, c *model.Claim) error {
	_, err := s.run(ctx, saveClaimQuery, map[string]any{
		"user_id":          c.UserID,
		"claim_id":         c.ID,
		"topic":            string(c.Topic),
		"content_summary":  c.Summary,
		"access_tags":      c.AccessTags,
		"status":           string(c.Status),
		"confidence_score": c.Confidence,
		"verified_at":      optTime(c.VerifiedAt),
		"created_at":       c.CreatedAt.UTC(),
		"expires_at":       optTime(c.ExpiresAt),
		"evidence_ids":     c.EvidenceIDs,
		"entity_ids":       c.EntityIDs,
	})
	return err
}

// ClaimsByUser returns every claim owned by userID, revoked ones included;
// the gatekeeper decides what a viewer may see.
func (s *Store) ClaimsByUser(ctx context.Context, userID string) ([]*model.Claim, error) {
	result, err := s.run(ctx, claimsByUserQuery, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}

	claims := make([]*model.Claim, 0, len(result.Records))
	for _, rec := range result.Records {
		c, err := claimFromRecord(rec, userID)
		if err != nil {
			s.log.WithError(err).Warn("skipping malformed claim record")
			continue
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// UpdateClaimStatus transitions a claim's status, persisting the recomputed
// confidence and verification time.
func (s *Store) UpdateClaimStatus(ctx context.Context, claimID string, status model.ClaimStatus, confidence float64, verifiedAt *time.Time) error {
	_, err := s.run(ctx, updateClaimStatusQuery, map[string]any{
		"claim_id":         claimID,
		"status":           string(status),
		"confidence_score": confidence,
		"verified_at":      optTime(verifiedAt),
	})
	return err
}

// AddEvidence appends an evidence reference and persists the recomputed
// confidence.
func (s *Store) AddEvidence(ctx context.Context, claimID, evidenceID string, confidence float64) error {
	_, err := s.run(ctx, addEvidenceQuery, map[string]any{
		"claim_id":         claimID,
		"evidence_id":      evidenceID,
		"confidence_score": confidence,
	})
	return err
}

func (s *Store) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, nil
}

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func claimFromRecord(rec *neo4j.Record, userID string) (*model.Claim, error) {
	c := &model.Claim{UserID: userID}

	id, ok := stringField(rec, "claim_id")
	if !ok {
		return nil, fmt.Errorf("claim record missing claim_id")
	}
	c.ID = id

	if topic, ok := stringField(rec, "topic"); ok {
		c.Topic = model.Topic(topic)
	}
	if summary, ok := stringField(rec, "content_summary"); ok {
		c.Summary = summary
	}
	if status, ok := stringField(rec, "status"); ok {
		c.Status = model.ClaimStatus(status)
	}
	c.AccessTags = stringSliceField(rec, "access_tags")
	c.EvidenceIDs = stringSliceField(rec, "evidence_ids")
	c.EntityIDs = stringSliceField(rec, "entity_ids")

	if v, ok := rec.Get("confidence_score"); ok {
		if f, ok := v.(float64); ok {
			c.Confidence = f
		}
	}

	if t, ok := timeField(rec, "created_at"); ok {
		c.CreatedAt = t
	}
	if t, ok := timeField(rec, "verified_at"); ok {
		c.VerifiedAt = &t
	}
	if t, ok := timeField(rec, "expires_at"); ok {
		c.ExpiresAt = &t
	}

	return c, nil
}

func stringField(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringSliceField(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeField(rec *neo4j.Record, key string) (time.Time, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return time.Time{}, false
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	return time.Time{}, false
}
