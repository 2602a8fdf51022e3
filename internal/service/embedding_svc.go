package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/mduc-2610/doc-agent-mlt/internal/cache"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
)

// EmbedClient is the inference backend contract: one unit-length vector per
// input text, in input order.
type EmbedClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// EmbeddingService turns text into vectors, consulting a bounded content-hash
// cache before hitting the model. Embeddings are deterministic while cached:
// the same text yields a bit-identical vector until evicted.
type EmbeddingService struct {
	client    EmbedClient
	cache     *cache.LRU[[]float32]
	batchSize int
	log       *logger.Logger
}

func NewEmbeddingService(client EmbedClient, cacheSize, batchSize int, log *logger.Logger) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = 128
	}
	return &EmbeddingService{
		client:    client,
		cache:     cache.NewLRU[[]float32](cacheSize),
		batchSize: batchSize,
		log:       log,
	}
}

// hashContent computes the cache key for a chunk of text.
func hashContent(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Embed returns one vector per input text, preserving input order. Inference
// errors propagate unretried; the surrounding pipeline handles cleanup.
func (s *EmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIndices []int

	for i, text := range texts {
		if cached, ok := s.cache.Get(hashContent(text)); ok {
			vectors[i] = cached
		} else {
			missTexts = append(missTexts, text)
			missIndices = append(missIndices, i)
		}
	}

	if len(missTexts) > 0 {
		s.log.Info("generating embeddings", "count", len(missTexts), "batch_size", s.batchSize)

		for start := 0; start < len(missTexts); start += s.batchSize {
			end := start + s.batchSize
			if end > len(missTexts) {
				end = len(missTexts)
			}

			batch := missTexts[start:end]
			embedded, err := s.client.Embed(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("embedding inference failed: %w", err)
			}
			if len(embedded) != len(batch) {
				return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embedded))
			}

			for j, vec := range embedded {
				idx := missIndices[start+j]
				vectors[idx] = vec
				s.cache.Set(hashContent(texts[idx]), vec)
			}
		}
	}

	return vectors, nil
}

// EmbedOne embeds a single text through the same cache-checked path.
func (s *EmbeddingService) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// CacheStats describes the embedding cache for introspection endpoints.
type CacheStats struct {
	CacheSize    int    `json:"cache_size"`
	MaxCacheSize int    `json:"max_cache_size"`
	ModelName    string `json:"model_name"`
}

func (s *EmbeddingService) Stats() CacheStats {
	return CacheStats{
		CacheSize:    s.cache.Len(),
		MaxCacheSize: s.cache.Capacity(),
		ModelName:    s.client.Model(),
	}
}

// ClearCache drops all cached embeddings and returns how many were dropped.
func (s *EmbeddingService) ClearCache() int {
	n := s.cache.Clear()
	s.log.Info("cleared embedding cache", "entries", n)
	return n
}

// Model returns the embedding model identifier.
func (s *EmbeddingService) Model() string {
	return s.client.Model()
}
