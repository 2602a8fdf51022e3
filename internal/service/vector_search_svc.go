package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
	"github.com/mduc-2610/doc-agent-mlt/internal/repository"
)

const (
	// minTruncatedChars is the smallest leftover budget worth filling with a
	// truncated chunk.
	minTruncatedChars = 100
	contextSeparator  = "\n\n"
	truncationMarker  = "..."
)

// ChunkSearcher is the persistence contract for ranked similarity queries.
type ChunkSearcher interface {
	SearchBySimilarity(ctx context.Context, queryEmbedding pgvector.Vector, documentIDs []uuid.UUID, topK int) ([]repository.ChunkSearchResult, error)
}

// SearchResult is one similarity hit exposed to callers.
type SearchResult struct {
	ID              uuid.UUID     `json:"id"`
	DocumentID      uuid.UUID     `json:"document_id"`
	ChunkIndex      int           `json:"chunk_index"`
	Content         string        `json:"content"`
	WordCount       int           `json:"word_count"`
	Metadata        model.JSONMap `json:"metadata"`
	SimilarityScore float64       `json:"similarity_score"`
}

// VectorSearchService runs threshold-filtered cosine similarity search over
// persisted chunk vectors and assembles retrieval context under a character
// budget.
type VectorSearchService struct {
	embeddings *EmbeddingService
	chunks     ChunkSearcher
	topK       int
	threshold  float64
	log        *logger.Logger
}

func NewVectorSearchService(embeddings *EmbeddingService, chunks ChunkSearcher, topK int, threshold float64, log *logger.Logger) *VectorSearchService {
	if topK <= 0 {
		topK = 8
	}
	return &VectorSearchService{
		embeddings: embeddings,
		chunks:     chunks,
		topK:       topK,
		threshold:  threshold,
		log:        log,
	}
}

// Search embeds the query and returns chunks ranked by descending similarity.
// Only scores at or above the threshold are returned, so fewer than topK
// results (possibly zero) is normal. A blank query short-circuits to empty
// without touching the model.
func (s *VectorSearchService) Search(ctx context.Context, query string, documentIDs []uuid.UUID, topK int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		s.log.Warn("empty query provided")
		return nil, nil
	}
	if topK <= 0 {
		topK = s.topK
	}

	queryEmbedding, err := s.embeddings.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.chunks.SearchBySimilarity(ctx, pgvector.NewVector(queryEmbedding), documentIDs, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		if row.SimilarityScore < s.threshold {
			continue
		}
		results = append(results, SearchResult{
			ID:              row.ID,
			DocumentID:      row.DocumentID,
			ChunkIndex:      row.ChunkIndex,
			Content:         row.Content,
			WordCount:       row.WordCount,
			Metadata:        row.Metadata,
			SimilarityScore: row.SimilarityScore,
		})
	}

	s.log.Info("similarity search finished", "hits", len(results), "top_k", topK)
	return results, nil
}

// GetRelevantContext packs the top-ranked chunks for a topic into a string of
// at most maxChars characters. Empty string means no relevant context; the
// caller must treat that as a user-facing condition, not proceed blindly.
func (s *VectorSearchService) GetRelevantContext(ctx context.Context, topic string, documentIDs []uuid.UUID, maxChars int) (string, error) {
	results, err := s.Search(ctx, topic, documentIDs, s.topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		s.log.Warn("no relevant context found", "topic", topic)
		return "", nil
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}

	context := assembleContext(contents, maxChars)
	s.log.Info("assembled context", "chars", len(context), "chunks", len(results))
	return context, nil
}

// assembleContext accumulates chunk contents in ranked order until the
// budget runs out. The first chunk that does not fully fit is truncated into
// the remaining space (when enough remains to be useful) and accumulation
// stops there; later chunks are not considered even if they would fit.
func assembleContext(contents []string, maxChars int) string {
	var parts []string
	used := 0

	for _, content := range contents {
		content = strings.TrimSpace(content)
		sepCost := 0
		if len(parts) > 0 {
			sepCost = len(contextSeparator)
		}

		if used+sepCost+len(content) <= maxChars {
			parts = append(parts, content)
			used += sepCost + len(content)
			continue
		}

		remaining := maxChars - used - sepCost
		if remaining > minTruncatedChars {
			truncated := truncateOnRuneBoundary(content, remaining-len(truncationMarker)) + truncationMarker
			parts = append(parts, truncated)
		}
		break
	}

	return strings.Join(parts, contextSeparator)
}

// truncateOnRuneBoundary cuts s to at most n bytes without splitting a
// multi-byte rune.
func truncateOnRuneBoundary(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
