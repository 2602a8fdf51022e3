package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch bulk-inserts all chunks for a document inside a single
// transaction: either every row lands or none do.
func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&chunks).Error
	})
}

func (r *ChunkRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	return chunks, err
}

func (r *ChunkRepository) ExistsByDocumentID(ctx context.Context, documentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChunkRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error
}

// ChunkSearchResult is a chunk row plus its cosine similarity to the query.
type ChunkSearchResult struct {
	model.DocumentChunk
	SimilarityScore float64 `gorm:"column:similarity_score"`
}

// SearchBySimilarity ranks chunks by cosine similarity to the query vector,
// expressed as 1 - cosine_distance, optionally restricted to a document set.
// Ties break by chunk id for a deterministic order.
func (r *ChunkRepository) SearchBySimilarity(ctx context.Context, queryEmbedding pgvector.Vector, documentIDs []uuid.UUID, topK int) ([]ChunkSearchResult, error) {
	var results []ChunkSearchResult

	query := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("*, 1 - (embedding <=> ?) AS similarity_score", queryEmbedding).
		Where("embedding IS NOT NULL")

	if len(documentIDs) > 0 {
		query = query.Where("document_id IN ?", documentIDs)
	}

	err := query.
		Order("similarity_score DESC, id ASC").
		Limit(topK).
		Find(&results).Error
	return results, err
}
