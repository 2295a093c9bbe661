// Package vector is the Qdrant adapter: nearest-neighbor search over claim
// summaries, always constrained to a caller-supplied candidate universe.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"

	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/worker"
)

// ErrUnavailable distinguishes vector-store transport failures. There is no
// safe degraded answer for "search unavailable", so callers surface it hard.
var ErrUnavailable = errors.New("vector store unavailable")

// Hit is one similarity result.
type Hit struct {
	ClaimID string
	Score   float64
}

// Qdrant point IDs must be UUIDs or integers, but claim IDs are arbitrary
// strings. pointID maps a claim ID to a deterministic UUID so upsert,
// delete, and the candidate filter all agree without a lookup table.
func pointID(claimID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(claimID)).String())
}

// Index stores claim embeddings in a Qdrant collection keyed by claim ID.
type Index struct {
	client     *qdrant.Client
	embedder   *Embedder
	collection string
	dim        uint64
	limiter    *worker.Limiter
	log        *logrus.Logger
}

// NewIndex connects to Qdrant.
func NewIndex(cfg model.VectorConfig, embedder *Embedder, limiter *worker.Limiter, log *logrus.Logger) (*Index, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Index{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		dim:        cfg.EmbeddingDim,
		limiter:    limiter,
		log:        log,
	}, nil
}

// EnsureCollection creates the claims collection if it does not exist.
func (x *Index) EnsureCollection(ctx context.Context) error {
	if info, err := x.client.GetCollectionInfo(ctx, x.collection); err == nil && info != nil {
		return nil
	}
	err := x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     x.dim,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrUnavailable, err)
	}
	x.log.WithField("collection", x.collection).Info("created vector collection")
	return nil
}

// IndexClaim embeds the claim summary and upserts it.
func (x *Index) IndexClaim(ctx context.Context, c *model.Claim) error {
	vec, err := x.embedder.Embed(ctx, c.Summary)
	if err != nil {
		return err
	}

	if x.limiter != nil {
		if err := x.limiter.Wait(ctx, "qdrant"); err != nil {
			return err
		}
	}

	wait := true
	_, err = x.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      pointID(c.ID),
				Vectors: qdrant.NewVectors(vec...),
				Payload: qdrant.NewValueMap(map[string]any{
					"claim_id": c.ID,
					"user_id":  c.UserID,
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert: %v", ErrUnavailable, err)
	}
	return nil
}

// DeleteClaim removes a claim's point from the collection.
func (x *Index) DeleteClaim(ctx context.Context, claimID string) error {
	_, err := x.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: x.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{pointID(claimID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: delete: %v", ErrUnavailable, err)
	}
	return nil
}

// Search embeds queryText and returns the top-k nearest claims among
// candidateIDs only. The full corpus is never searched: result counts and
// timing must not leak anything about claims outside the eligible set.
func (x *Index) Search(ctx context.Context, queryText string, candidateIDs []string, k int) ([]Hit, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	vec, err := x.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	if x.limiter != nil {
		if err := x.limiter.Wait(ctx, "qdrant"); err != nil {
			return nil, err
		}
	}

	ids := make([]*qdrant.PointId, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		ids = append(ids, pointID(id))
	}

	limit := uint64(k)
	result, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				{
					ConditionOneOf: &qdrant.Condition_HasId{
						HasId: &qdrant.HasIdCondition{HasId: ids},
					},
				},
			},
		},
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}

	hits := make([]Hit, 0, len(result))
	for _, point := range result {
		claimID := point.Payload["claim_id"].GetStringValue()
		if claimID == "" {
			continue
		}
		hits = append(hits, Hit{ClaimID: claimID, Score: float64(point.Score)})
	}
	return hits, nil
}
