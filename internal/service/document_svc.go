package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mduc-2610/doc-agent-mlt/internal/extractor"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
	"github.com/mduc-2610/doc-agent-mlt/internal/storage"
	"github.com/mduc-2610/doc-agent-mlt/internal/textsplit"
	"github.com/pgvector/pgvector-go"
)

// DocumentStore is the persistence contract for document rows.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	FindAll(ctx context.Context) ([]model.Document, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChunkStore is the persistence contract for chunk rows.
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []model.DocumentChunk) error
	FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]model.DocumentChunk, error)
	ExistsByDocumentID(ctx context.Context, documentID uuid.UUID) (bool, error)
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
}

// SummaryRemover deletes a document's summary row.
type SummaryRemover interface {
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
}

// SessionCounter tracks how many documents a session holds.
type SessionCounter interface {
	AdjustDocumentCount(ctx context.Context, id uuid.UUID, delta int) error
}

// DocumentService owns the ingestion pipeline: extract text, persist it,
// then chunk and embed it for retrieval.
type DocumentService struct {
	documents  DocumentStore
	chunks     ChunkStore
	summaries  SummaryRemover
	sessions   SessionCounter
	embeddings *EmbeddingService
	store      storage.Provider
	text       extractor.Extractor
	web        *extractor.WebExtractor
	log        *logger.Logger
}

func NewDocumentService(
	documents DocumentStore,
	chunks ChunkStore,
	summaries SummaryRemover,
	sessions SessionCounter,
	embeddings *EmbeddingService,
	store storage.Provider,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		documents:  documents,
		chunks:     chunks,
		summaries:  summaries,
		sessions:   sessions,
		embeddings: embeddings,
		store:      store,
		text:       extractor.NewTextExtractor(),
		web:        extractor.NewWebExtractor(),
		log:        log,
	}
}

// IngestText runs the full pipeline for pasted or pre-extracted text: create
// the document record, store the content file, then chunk and embed. On any
// failure after the record exists, the record and stored files are removed
// so a retry starts clean.
func (s *DocumentService) IngestText(ctx context.Context, sessionID uuid.UUID, filename, sourceType, text string) (*model.Document, error) {
	extracted, err := s.text.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", filename, err)
	}
	return s.ingest(ctx, sessionID, filename, sourceType, extracted, nil)
}

// IngestUpload stores an uploaded file and ingests its text. The raw upload
// is kept alongside the extracted content so the original can be re-served
// or re-processed.
func (s *DocumentService) IngestUpload(ctx context.Context, sessionID uuid.UUID, filename string, data []byte) (*model.Document, error) {
	extracted, err := s.text.Extract(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", filename, err)
	}
	return s.ingest(ctx, sessionID, filename, "file", extracted, data)
}

// IngestURL extracts readable text from a web page and ingests it.
func (s *DocumentService) IngestURL(ctx context.Context, sessionID uuid.UUID, url string) (*model.Document, error) {
	text, err := s.web.Extract(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	title := s.web.Title(ctx, url)
	doc, err := s.ingest(ctx, sessionID, title, "url", text, nil)
	if err != nil {
		return nil, err
	}
	doc.SourceName = url
	if err := s.documents.Update(ctx, doc); err != nil {
		s.log.Warn("failed to record source url", "document_id", doc.ID, "error", err)
	}
	return doc, nil
}

func (s *DocumentService) ingest(ctx context.Context, sessionID uuid.UUID, filename, sourceType, text string, source []byte) (*model.Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("document %q has no extractable text", filename)
	}

	doc := &model.Document{
		SessionID:        sessionID,
		Filename:         filename,
		FileType:         strings.TrimPrefix(filepath.Ext(filename), "."),
		FileSize:         int64(len(text)),
		SourceName:       filename,
		SourceType:       sourceType,
		ProcessingStatus: model.ProcessingStatusProcessing,
		TextLength:       len(text),
		StorageProvider:  s.store.Name(),
	}
	if len(source) > 0 {
		doc.FileSize = int64(len(source))
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if err := s.process(ctx, doc, text, source); err != nil {
		s.cleanupFailed(ctx, doc)
		return nil, err
	}

	if err := s.sessions.AdjustDocumentCount(ctx, sessionID, 1); err != nil {
		s.log.Warn("failed to bump session document count", "session_id", sessionID, "error", err)
	}
	return doc, nil
}

func (s *DocumentService) process(ctx context.Context, doc *model.Document, text string, source []byte) error {
	if len(source) > 0 {
		sourcePath := storage.SourcePath(doc.ID.String(), filepath.Ext(doc.Filename))
		if err := s.store.Write(ctx, sourcePath, source); err != nil {
			return fmt.Errorf("store source file: %w", err)
		}
		doc.SourceFilePath = sourcePath
	}

	contentPath := storage.ContentPath(doc.ID.String())
	if err := s.store.Write(ctx, contentPath, []byte(text)); err != nil {
		return fmt.Errorf("store content: %w", err)
	}
	doc.ContentFilePath = contentPath

	if _, err := s.ChunkAndEmbed(ctx, doc.ID, text); err != nil {
		return err
	}

	doc.ProcessingStatus = model.ProcessingStatusCompleted
	if err := s.documents.Update(ctx, doc); err != nil {
		return fmt.Errorf("mark document completed: %w", err)
	}
	return nil
}

// ChunkAndEmbed splits text into retrieval chunks, embeds them in one
// batched pass, stores everything transactionally, and returns the persisted
// set. A document that is already chunked gets its existing chunks back
// unchanged; text that yields no chunks is valid and returns an empty set.
func (s *DocumentService) ChunkAndEmbed(ctx context.Context, documentID uuid.UUID, text string) ([]model.DocumentChunk, error) {
	exists, err := s.chunks.ExistsByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("check existing chunks: %w", err)
	}
	if exists {
		s.log.Info("document already chunked, returning existing set", "document_id", documentID)
		return s.chunks.FindByDocumentID(ctx, documentID)
	}

	wordCount := len(strings.Fields(text))
	splitter := textsplit.ForDocument(wordCount)
	pieces := splitter.SplitText(text)
	if len(pieces) == 0 {
		s.log.Info("document produced no chunks", "document_id", documentID)
		return nil, nil
	}

	vectors, err := s.embeddings.Embed(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(pieces), len(vectors))
	}

	chunks := make([]model.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = model.DocumentChunk{
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    piece,
			WordCount:  len(strings.Fields(piece)),
			Embedding:  pgvector.NewVector(vectors[i]),
			Metadata: model.JSONMap{
				"chunk_length": len(piece),
				"word_count":   len(strings.Fields(piece)),
				"content_hash": hashContent(piece),
			},
		}
	}

	if err := s.chunks.CreateBatch(ctx, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	s.log.Info("document chunked and embedded", "document_id", documentID, "chunks", len(chunks))
	return chunks, nil
}

func (s *DocumentService) cleanupFailed(ctx context.Context, doc *model.Document) {
	s.log.Warn("ingestion failed, cleaning up", "document_id", doc.ID)
	if err := s.documents.UpdateStatus(ctx, doc.ID, model.ProcessingStatusFailed); err != nil {
		s.log.Warn("cleanup: mark document failed", "error", err)
	}
	for _, path := range []string{doc.ContentFilePath, doc.SourceFilePath} {
		if path == "" {
			continue
		}
		if err := s.store.Delete(ctx, path); err != nil {
			s.log.Warn("cleanup: delete stored file", "path", path, "error", err)
		}
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		s.log.Warn("cleanup: delete document record", "error", err)
	}
}

// Get returns a document by id.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	return s.documents.FindByID(ctx, id)
}

// List returns all documents, or the documents of one session when
// sessionID is non-nil.
func (s *DocumentService) List(ctx context.Context, sessionID *uuid.UUID) ([]model.Document, error) {
	if sessionID != nil {
		return s.documents.FindBySessionID(ctx, *sessionID)
	}
	return s.documents.FindAll(ctx)
}

// Content reads a document's extracted text back from storage.
func (s *DocumentService) Content(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.ContentFilePath == "" {
		return "", fmt.Errorf("document %s has no stored content", id)
	}
	data, err := s.store.Read(ctx, doc.ContentFilePath)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

// Rename updates a document's display name.
func (s *DocumentService) Rename(ctx context.Context, id uuid.UUID, filename string) (*model.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Filename = filename
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document with its chunks, summary, and stored files.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.chunks.DeleteByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.summaries.DeleteByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}

	for _, path := range []string{doc.ContentFilePath, doc.SourceFilePath, storage.SummaryPath(id.String())} {
		if path == "" {
			continue
		}
		if err := s.store.Delete(ctx, path); err != nil {
			s.log.Warn("failed to delete stored file", "path", path, "error", err)
		}
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.AdjustDocumentCount(ctx, doc.SessionID, -1); err != nil {
		s.log.Warn("failed to decrement session document count", "session_id", doc.SessionID, "error", err)
	}
	return nil
}
