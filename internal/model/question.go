package model

import (
	"github.com/google/uuid"
)

type Question struct {
	BaseModel
	SessionID       uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Type            string    `gorm:"size:50;not null" json:"type"`
	DifficultyLevel string    `gorm:"size:50" json:"difficulty_level"`
	Topic           string    `gorm:"size:255" json:"topic"`
	CorrectAnswer   string    `gorm:"type:text;not null" json:"correct_answer"`
	Explanation     string    `gorm:"type:text" json:"explanation"`
	SourceContext   string    `gorm:"type:text" json:"source_context"`
	GenerationModel string    `gorm:"size:100" json:"generation_model"`

	// Relations
	Answers []QuestionAnswer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

type QuestionAnswer struct {
	BaseModel
	QuestionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsCorrect   bool      `gorm:"default:false" json:"is_correct"`
	Explanation string    `gorm:"type:text" json:"explanation"`
}

func (QuestionAnswer) TableName() string {
	return "question_answers"
}

type Flashcard struct {
	BaseModel
	SessionID       uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	CardType        string    `gorm:"size:50;not null" json:"card_type"`
	Question        string    `gorm:"type:text;not null" json:"question"`
	Answer          string    `gorm:"type:text;not null" json:"answer"`
	Explanation     string    `gorm:"type:text" json:"explanation"`
	Topic           string    `gorm:"size:255" json:"topic"`
	SourceContext   string    `gorm:"type:text" json:"source_context"`
	GenerationModel string    `gorm:"size:100" json:"generation_model"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
