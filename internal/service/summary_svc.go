package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
	"github.com/mduc-2610/doc-agent-mlt/internal/prompt"
	"github.com/mduc-2610/doc-agent-mlt/internal/repository"
	"github.com/mduc-2610/doc-agent-mlt/internal/storage"
)

// SummaryService generates and stores per-document study summaries.
type SummaryService struct {
	documents  *repository.DocumentRepository
	summaries  *repository.SummaryRepository
	generation *GenerationService
	store      storage.Provider
	log        *logger.Logger
}

func NewSummaryService(
	documents *repository.DocumentRepository,
	summaries *repository.SummaryRepository,
	generation *GenerationService,
	store storage.Provider,
	log *logger.Logger,
) *SummaryService {
	return &SummaryService{
		documents:  documents,
		summaries:  summaries,
		generation: generation,
		store:      store,
		log:        log,
	}
}

// Get returns a document's summary, or nil when none exists yet.
func (s *SummaryService) Get(ctx context.Context, documentID uuid.UUID) (*model.DocumentSummary, error) {
	return s.summaries.FindByDocumentID(ctx, documentID)
}

// Generate produces a summary for a document. A document that already has
// one gets the existing summary back; generation only runs once per
// document.
func (s *SummaryService) Generate(ctx context.Context, documentID uuid.UUID) (*model.DocumentSummary, error) {
	existing, err := s.summaries.FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("summary already exists", "document_id", documentID)
		return existing, nil
	}

	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ContentFilePath == "" {
		return nil, fmt.Errorf("document %s has no stored content", documentID)
	}
	data, err := s.store.Read(ctx, doc.ContentFilePath)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	content := string(data)

	promptText := prompt.Render(prompt.SummaryTemplate, map[string]string{
		"session_name":   doc.Filename,
		"document_count": "1",
		"content":        content,
	})

	summaryText := s.generation.GenerateContent(ctx, promptText, ContentKindSummary)
	if strings.TrimSpace(summaryText) == "" {
		return nil, fmt.Errorf("summary generation produced no content for document %s", documentID)
	}
	summaryText = strings.ReplaceAll(summaryText, "**", "")

	summaryPath := storage.SummaryPath(documentID.String())
	if err := s.store.Write(ctx, summaryPath, []byte(summaryText)); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	summary := &model.DocumentSummary{
		DocumentID:       documentID,
		SummaryContent:   summaryText,
		DocumentCount:    1,
		TotalWordCount:   len(strings.Fields(content)),
		SummaryWordCount: len(strings.Fields(summaryText)),
		GenerationModel:  s.generation.Model(),
		SummaryFilePath:  summaryPath,
	}
	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}

	s.log.Info("summary generated", "document_id", documentID, "words", summary.SummaryWordCount)
	return summary, nil
}
