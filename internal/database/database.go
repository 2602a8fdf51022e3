package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mduc-2610/doc-agent-mlt/internal/config"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	// pgvector must be installed before the vector columns can migrate
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&model.Session{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.DocumentSummary{},
		&model.Question{},
		&model.QuestionAnswer{},
		&model.Flashcard{},
	); err != nil {
		return err
	}

	// ANN index for cosine search over chunk embeddings
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks USING hnsw (embedding vector_cosine_ops)",
	).Error
}
