package model

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

type Document struct {
	BaseModel
	SessionID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"session_id"`
	Filename         string           `gorm:"size:255;not null" json:"filename"`
	FileType         string           `gorm:"size:50;not null" json:"file_type"`
	FileSize         int64            `gorm:"default:0" json:"file_size"`
	SourceName       string           `gorm:"size:255;not null" json:"source_name"`
	SourceType       string           `gorm:"size:50;not null" json:"source_type"`
	ProcessingStatus ProcessingStatus `gorm:"size:50;default:'processing'" json:"processing_status"`
	ContentFilePath  string           `gorm:"size:500" json:"content_file_path"`
	SourceFilePath   string           `gorm:"size:500" json:"source_file_path"`
	TextLength       int              `gorm:"default:0" json:"text_length"`
	StorageProvider  string           `gorm:"size:50;default:'local'" json:"storage_provider"`
	StorageBucket    string           `gorm:"size:100" json:"storage_bucket"`
	ExtraMetadata    JSONMap          `gorm:"type:jsonb" json:"extra_metadata"`

	// Relations
	Chunks  []DocumentChunk  `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	Summary *DocumentSummary `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"summary,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentChunk struct {
	BaseModel
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	ChunkIndex int             `gorm:"not null" json:"chunk_index"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	WordCount  int             `gorm:"not null" json:"word_count"`
	Embedding  pgvector.Vector `gorm:"type:vector(384)" json:"-"`
	Metadata   JSONMap         `gorm:"type:jsonb" json:"metadata"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

type DocumentSummary struct {
	BaseModel
	DocumentID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"document_id"`
	SummaryContent   string    `gorm:"type:text;not null" json:"summary_content"`
	DocumentCount    int       `gorm:"not null;default:0" json:"document_count"`
	TotalWordCount   int       `gorm:"not null;default:0" json:"total_word_count"`
	SummaryWordCount int       `gorm:"not null;default:0" json:"summary_word_count"`
	GenerationModel  string    `gorm:"size:100;not null" json:"generation_model"`
	SummaryFilePath  string    `gorm:"size:500;not null" json:"summary_file_path"`
}

func (DocumentSummary) TableName() string {
	return "document_summaries"
}
