package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
)

// fakeEmbedClient returns a distinct deterministic vector per text and
// records every batch it receives.
type fakeEmbedClient struct {
	batches [][]string
	err     error
}

func (f *fakeEmbedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), float32(i)}
	}
	return vectors, nil
}

func (f *fakeEmbedClient) Model() string   { return "fake-embedder" }
func (f *fakeEmbedClient) Dimensions() int { return 2 }

func TestEmbedEmpty(t *testing.T) {
	client := &fakeEmbedClient{}
	svc := NewEmbeddingService(client, 10, 128, logger.NewNop())

	vectors, err := svc.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Empty(t, client.batches)
}

func TestEmbedPreservesOrder(t *testing.T) {
	client := &fakeEmbedClient{}
	svc := NewEmbeddingService(client, 10, 128, logger.NewNop())

	texts := []string{"a", "bb", "ccc", "dddd"}
	vectors, err := svc.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 4)

	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vectors[i][0], "index %d", i)
	}
}

func TestEmbedCacheRoundTrip(t *testing.T) {
	client := &fakeEmbedClient{}
	svc := NewEmbeddingService(client, 10, 128, logger.NewNop())

	first, err := svc.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, client.batches, 1)

	// Second call mixes cached and new texts: only the new one reaches
	// the client.
	second, err := svc.Embed(context.Background(), []string{"alpha", "gamma", "beta"})
	require.NoError(t, err)
	require.Len(t, client.batches, 2)
	assert.Equal(t, []string{"gamma"}, client.batches[1])

	assert.Equal(t, first[0], second[0])
	assert.Equal(t, first[1], second[2])
}

func TestEmbedBatching(t *testing.T) {
	client := &fakeEmbedClient{}
	svc := NewEmbeddingService(client, 100, 3, logger.NewNop())

	var texts []string
	for i := 0; i < 8; i++ {
		texts = append(texts, fmt.Sprintf("text-%d", i))
	}

	vectors, err := svc.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 8)

	// 8 misses with batch size 3 → batches of 3, 3, 2.
	require.Len(t, client.batches, 3)
	assert.Len(t, client.batches[0], 3)
	assert.Len(t, client.batches[1], 3)
	assert.Len(t, client.batches[2], 2)
}

func TestEmbedErrorPropagates(t *testing.T) {
	client := &fakeEmbedClient{err: fmt.Errorf("inference down")}
	svc := NewEmbeddingService(client, 10, 128, logger.NewNop())

	_, err := svc.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference down")
}

func TestEmbeddingStatsAndClear(t *testing.T) {
	client := &fakeEmbedClient{}
	svc := NewEmbeddingService(client, 50, 128, logger.NewNop())

	_, err := svc.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.CacheSize)
	assert.Equal(t, 50, stats.MaxCacheSize)
	assert.Equal(t, "fake-embedder", stats.ModelName)

	assert.Equal(t, 3, svc.ClearCache())
	assert.Equal(t, 0, svc.Stats().CacheSize)
}
