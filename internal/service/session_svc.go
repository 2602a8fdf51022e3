package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

// SessionStore is the persistence contract for session rows.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	FindAll(ctx context.Context) ([]model.Session, error)
	FindByUserID(ctx context.Context, userID string) ([]model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionItemPurger removes a session's generated items.
type SessionItemPurger interface {
	DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) error
}

// DocumentRemover lists and fully removes documents, including their chunks,
// summaries, and stored files.
type DocumentRemover interface {
	List(ctx context.Context, sessionID *uuid.UUID) ([]model.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionService manages study sessions, the grouping unit for documents
// and generated content.
type SessionService struct {
	sessions   SessionStore
	questions  SessionItemPurger
	flashcards SessionItemPurger
	documents  DocumentRemover
	log        *logger.Logger
}

func NewSessionService(
	sessions SessionStore,
	questions SessionItemPurger,
	flashcards SessionItemPurger,
	documents DocumentRemover,
	log *logger.Logger,
) *SessionService {
	return &SessionService{
		sessions:   sessions,
		questions:  questions,
		flashcards: flashcards,
		documents:  documents,
		log:        log,
	}
}

func (s *SessionService) Create(ctx context.Context, userID, name, description string) (*model.Session, error) {
	session := &model.Session{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return s.sessions.FindByID(ctx, id)
}

// List returns all sessions, or one user's sessions when userID is set.
func (s *SessionService) List(ctx context.Context, userID string) ([]model.Session, error) {
	if userID != "" {
		return s.sessions.FindByUserID(ctx, userID)
	}
	return s.sessions.FindAll(ctx)
}

func (s *SessionService) Update(ctx context.Context, session *model.Session) error {
	return s.sessions.Update(ctx, session)
}

// Delete removes a session and everything it owns: its documents (with
// their chunks, summaries, and stored files), its questions, and its
// flashcards. Leftover chunks would keep surfacing in unrestricted
// retrieval, so the document pass runs first and failures abort the
// deletion.
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	docs, err := s.documents.List(ctx, &id)
	if err != nil {
		return fmt.Errorf("list session documents: %w", err)
	}
	for _, doc := range docs {
		if err := s.documents.Delete(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", doc.ID, err)
		}
	}

	if err := s.questions.DeleteBySessionID(ctx, id); err != nil {
		return err
	}
	if err := s.flashcards.DeleteBySessionID(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("session deleted", "session_id", id, "documents", len(docs))
	return nil
}
