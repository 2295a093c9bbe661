// Package claims manages the claim lifecycle: creation, evidence
// attachment, attestation, and revocation. Confidence is recomputed only
// on the lifecycle events that change it, never at query time.
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/rebac"
	"github.com/ppiankov/claimscope/internal/score"
)

// ErrNotFound indicates the referenced claim does not exist
var ErrNotFound = errors.New("claim not found")

// Store is the persistence surface the service needs from the graph layer
type Store interface {
	SaveClaim(ctx context.Context, c *model.Claim) error
	ClaimsByUser(ctx context.Context, userID string) ([]*model.Claim, error)
	UpdateClaimStatus(ctx context.Context, claimID string, status model.ClaimStatus, confidence float64, verifiedAt *time.Time) error
	AddEvidence(ctx context.Context, claimID, evidenceID string, confidence float64) error
}

// Indexer keeps the vector index in step with the claim store
type Indexer interface {
	IndexClaim(ctx context.Context, c *model.Claim) error
	DeleteClaim(ctx context.Context, claimID string) error
}

// Scoper resolves the access scope for a (viewer, target) pair. Listing
// goes through the same relationship matrix as retrieval.
type Scoper interface {
	Scope(ctx context.Context, viewerID, targetID string) *rebac.AccessScope
}

// Service coordinates claim writes across the graph store and vector index
type Service struct {
	store      Store
	index      Indexer
	scopes     Scoper
	confidence *score.ConfidenceModel
	log        *logrus.Logger
}

// NewService creates a claim lifecycle service
func NewService(store Store, index Indexer, scopes Scoper, confidence *score.ConfidenceModel, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:      store,
		index:      index,
		scopes:     scopes,
		confidence: confidence,
		log:        log,
	}
}

// CreateInput describes a new claim
type CreateInput struct {
	UserID      string
	Topic       model.Topic
	Summary     string
	AccessTags  []string
	EvidenceIDs []string
	EntityIDs   []string
	ExpiresAt   *time.Time
}

// Create persists a new claim and indexes its summary. Initial confidence
// comes from evidence presence alone; attestation and trusted-org signals
// arrive through later lifecycle events.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Claim, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if in.Summary == "" {
		return nil, fmt.Errorf("claim summary is required")
	}
	for _, tag := range in.AccessTags {
		if !model.ValidAccessTag(tag) {
			return nil, fmt.Errorf("unknown access tag %q", tag)
		}
	}

	hasEvidence := len(in.EvidenceIDs) > 0
	now := time.Now().UTC()

	c := &model.Claim{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Topic:       in.Topic,
		Summary:     in.Summary,
		AccessTags:  in.AccessTags,
		Status:      model.StatusSelfDeclared,
		Confidence:  s.confidence.Score(hasEvidence, false, false),
		CreatedAt:   now,
		ExpiresAt:   in.ExpiresAt,
		EvidenceIDs: in.EvidenceIDs,
		EntityIDs:   in.EntityIDs,
	}

	if err := s.store.SaveClaim(ctx, c); err != nil {
		return nil, fmt.Errorf("save claim: %w", err)
	}
	if err := s.index.IndexClaim(ctx, c); err != nil {
		// The claim is persisted; the index can be rebuilt, so surface
		// the failure without rolling back.
		s.log.WithError(err).WithField("claim_id", c.ID).Warn("claim saved but not indexed")
		return c, fmt.Errorf("index claim: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"claim_id": c.ID,
		"user_id":  c.UserID,
		"topic":    c.Topic,
	}).Info("claim created")
	return c, nil
}

// Attest marks a claim as attested by a third party and recomputes its
// confidence. Attestations from trusted organizations score higher than
// peer attestations.
func (s *Service) Attest(ctx context.Context, claimID, attesterID string, trustedOrg bool) error {
	if claimID == "" {
		return fmt.Errorf("claim ID is required")
	}
	if attesterID == "" {
		return fmt.Errorf("attester ID is required")
	}

	now := time.Now().UTC()
	confidence := s.confidence.Score(false, true, trustedOrg)

	if err := s.store.UpdateClaimStatus(ctx, claimID, model.StatusAttested, confidence, &now); err != nil {
		return fmt.Errorf("attest claim %s: %w", claimID, err)
	}

	s.log.WithFields(logrus.Fields{
		"claim_id":    claimID,
		"attester_id": attesterID,
		"trusted_org": trustedOrg,
		"confidence":  confidence,
	}).Info("claim attested")
	return nil
}

// Revoke transitions a claim to revoked. The claim stays in the graph so
// its owner can still see it in their history, but it is removed from the
// search index and scores zero from then on.
func (s *Service) Revoke(ctx context.Context, claimID string) error {
	if claimID == "" {
		return fmt.Errorf("claim ID is required")
	}

	if err := s.store.UpdateClaimStatus(ctx, claimID, model.StatusRevoked, 0, nil); err != nil {
		return fmt.Errorf("revoke claim %s: %w", claimID, err)
	}
	if err := s.index.DeleteClaim(ctx, claimID); err != nil {
		s.log.WithError(err).WithField("claim_id", claimID).Warn("revoked claim not removed from index")
	}

	s.log.WithField("claim_id", claimID).Info("claim revoked")
	return nil
}

// AddEvidence attaches an evidence record to a claim and recomputes its
// confidence. The store keeps whichever score is higher, so evidence never
// downgrades an attested claim.
func (s *Service) AddEvidence(ctx context.Context, claimID, evidenceID string) error {
	if claimID == "" {
		return fmt.Errorf("claim ID is required")
	}
	if evidenceID == "" {
		return fmt.Errorf("evidence ID is required")
	}

	confidence := s.confidence.Score(true, false, false)
	if err := s.store.AddEvidence(ctx, claimID, evidenceID, confidence); err != nil {
		return fmt.Errorf("add evidence to claim %s: %w", claimID, err)
	}

	s.log.WithFields(logrus.Fields{
		"claim_id":    claimID,
		"evidence_id": evidenceID,
	}).Info("evidence attached")
	return nil
}

// List returns the claims of userID that viewerID is allowed to see,
// filtered through the viewer's resolved access scope. Revoked claims are
// included only when the viewer is the owner; other viewers never see
// revocation history.
func (s *Service) List(ctx context.Context, userID, viewerID string) ([]*model.Claim, error) {
	all, err := s.store.ClaimsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list claims for %s: %w", userID, err)
	}
	if viewerID == userID {
		return all, nil
	}

	scope := s.scopes.Scope(ctx, viewerID, userID)
	visible := make([]*model.Claim, 0, len(all))
	for _, c := range all {
		if c.Status == model.StatusRevoked {
			continue
		}
		if !scope.CanAccess(c.AccessTags) {
			continue
		}
		visible = append(visible, c)
	}
	return visible, nil
}
