package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

type FlashcardRepository struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

func (r *FlashcardRepository) Create(ctx context.Context, flashcard *model.Flashcard) error {
	return r.db.WithContext(ctx).Create(flashcard).Error
}

func (r *FlashcardRepository) CreateBatch(ctx context.Context, flashcards []model.Flashcard) error {
	if len(flashcards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&flashcards).Error
}

func (r *FlashcardRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Flashcard, error) {
	var flashcard model.Flashcard
	if err := r.db.WithContext(ctx).First(&flashcard, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &flashcard, nil
}

func (r *FlashcardRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]model.Flashcard, error) {
	var flashcards []model.Flashcard
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&flashcards).Error
	return flashcards, err
}

func (r *FlashcardRepository) Update(ctx context.Context, flashcard *model.Flashcard) error {
	return r.db.WithContext(ctx).Save(flashcard).Error
}

func (r *FlashcardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Flashcard{}, "id = ?", id).Error
}

func (r *FlashcardRepository) DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.Flashcard{}).Error
}
