package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ppiankov/claimscope/internal/cache"
	"github.com/ppiankov/claimscope/internal/model"
	"github.com/ppiankov/claimscope/internal/worker"
)

const embedCacheTTL = 24 * time.Hour

// Embedder turns text into vectors through the embeddings API. Query
// embeddings are cached by text so repeated questions do not re-bill;
// the cache never holds access-control state.
type Embedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	cache   cache.Cache
	limiter *worker.Limiter
}

// NewEmbedder creates an embedder for the configured model.
func NewEmbedder(apiKey string, cfg model.VectorConfig, c cache.Cache, limiter *worker.Limiter) *Embedder {
	return &Embedder{
		client:  openai.NewClient(apiKey),
		model:   openai.EmbeddingModel(cfg.EmbeddingModel),
		cache:   c,
		limiter: limiter,
	}
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(string(e.model) + ":" + text)
	if e.cache != nil {
		if raw, ok := e.cache.Get(key); ok {
			var vec []float32
			if err := json.Unmarshal(raw, &vec); err == nil {
				return vec, nil
			}
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, "embeddings"); err != nil {
			return nil, err
		}
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embeddings returned no data", ErrUnavailable)
	}

	vec := resp.Data[0].Embedding
	if e.cache != nil {
		if raw, err := json.Marshal(vec); err == nil {
			_ = e.cache.Set(key, raw, embedCacheTTL)
		}
	}
	return vec, nil
}
