package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Create(ctx context.Context, summary *model.DocumentSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// FindByDocumentID returns the document's summary, or nil when none exists.
func (r *SummaryRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) (*model.DocumentSummary, error) {
	var summary model.DocumentSummary
	err := r.db.WithContext(ctx).First(&summary, "document_id = ?", documentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *SummaryRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.DocumentSummary{}).Error
}
