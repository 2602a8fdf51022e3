package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// orderAnswers keeps preloaded answer options in insertion order so option
// positions stay stable across reads.
func orderAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// CreateWithAnswers persists a question and its answer options atomically.
func (r *QuestionRepository) CreateWithAnswers(ctx context.Context, question *model.Question, answers []model.QuestionAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuestionID = question.ID
		}
		if len(answers) == 0 {
			return nil
		}
		return tx.Create(&answers).Error
	})
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).Preload("Answers", orderAnswers).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Preload("Answers", orderAnswers).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&questions).Error
	return questions, err
}

// ReplaceAnswers swaps a question's answer set for a new one.
func (r *QuestionRepository) ReplaceAnswers(ctx context.Context, questionID uuid.UUID, answers []model.QuestionAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionAnswer{}).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuestionID = questionID
		}
		if len(answers) == 0 {
			return nil
		}
		return tx.Create(&answers).Error
	})
}

func (r *QuestionRepository) Update(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Omit("Answers").Save(question).Error
}

func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, "id = ?", id).Error
	})
}

func (r *QuestionRepository) DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&model.Question{}).Where("session_id = ?", sessionID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("question_id IN ?", ids).Delete(&model.QuestionAnswer{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("session_id = ?", sessionID).Delete(&model.Question{}).Error
	})
}
