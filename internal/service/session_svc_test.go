package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
)

type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.Session
	deleted  []uuid.UUID
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uuid.UUID]*model.Session{}}
}

func (f *fakeSessionStore) Create(ctx context.Context, session *model.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (f *fakeSessionStore) FindAll(ctx context.Context) ([]model.Session, error) {
	out := make([]model.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSessionStore) FindByUserID(ctx context.Context, userID string) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Update(ctx context.Context, session *model.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePurger struct {
	purged []uuid.UUID
}

func (f *fakePurger) DeleteBySessionID(ctx context.Context, sessionID uuid.UUID) error {
	f.purged = append(f.purged, sessionID)
	return nil
}

type fakeDocumentRemover struct {
	bySession map[uuid.UUID][]model.Document
	removed   []uuid.UUID
	failOn    uuid.UUID
}

func (f *fakeDocumentRemover) List(ctx context.Context, sessionID *uuid.UUID) ([]model.Document, error) {
	if sessionID == nil {
		var all []model.Document
		for _, docs := range f.bySession {
			all = append(all, docs...)
		}
		return all, nil
	}
	return f.bySession[*sessionID], nil
}

func (f *fakeDocumentRemover) Delete(ctx context.Context, id uuid.UUID) error {
	if id == f.failOn {
		return errors.New("storage unavailable")
	}
	f.removed = append(f.removed, id)
	return nil
}

func sessionDoc(sessionID uuid.UUID) model.Document {
	return model.Document{
		BaseModel: model.BaseModel{ID: uuid.New()},
		SessionID: sessionID,
	}
}

func TestSessionDeleteCascadesToDocuments(t *testing.T) {
	store := newFakeSessionStore()
	session := &model.Session{UserID: "u1", Name: "biology"}
	require.NoError(t, store.Create(context.Background(), session))

	docA := sessionDoc(session.ID)
	docB := sessionDoc(session.ID)
	remover := &fakeDocumentRemover{
		bySession: map[uuid.UUID][]model.Document{session.ID: {docA, docB}},
	}
	questions := &fakePurger{}
	flashcards := &fakePurger{}

	svc := NewSessionService(store, questions, flashcards, remover, logger.NewNop())
	require.NoError(t, svc.Delete(context.Background(), session.ID))

	assert.ElementsMatch(t, []uuid.UUID{docA.ID, docB.ID}, remover.removed)
	assert.Equal(t, []uuid.UUID{session.ID}, questions.purged)
	assert.Equal(t, []uuid.UUID{session.ID}, flashcards.purged)
	assert.Equal(t, []uuid.UUID{session.ID}, store.deleted)
}

func TestSessionDeleteWithoutDocuments(t *testing.T) {
	store := newFakeSessionStore()
	session := &model.Session{UserID: "u1", Name: "empty"}
	require.NoError(t, store.Create(context.Background(), session))

	remover := &fakeDocumentRemover{bySession: map[uuid.UUID][]model.Document{}}
	svc := NewSessionService(store, &fakePurger{}, &fakePurger{}, remover, logger.NewNop())

	require.NoError(t, svc.Delete(context.Background(), session.ID))
	assert.Empty(t, remover.removed)
	assert.Equal(t, []uuid.UUID{session.ID}, store.deleted)
}

func TestSessionDeleteAbortsOnDocumentFailure(t *testing.T) {
	store := newFakeSessionStore()
	session := &model.Session{UserID: "u1", Name: "chemistry"}
	require.NoError(t, store.Create(context.Background(), session))

	docA := sessionDoc(session.ID)
	docB := sessionDoc(session.ID)
	remover := &fakeDocumentRemover{
		bySession: map[uuid.UUID][]model.Document{session.ID: {docA, docB}},
		failOn:    docB.ID,
	}
	questions := &fakePurger{}
	flashcards := &fakePurger{}

	svc := NewSessionService(store, questions, flashcards, remover, logger.NewNop())
	err := svc.Delete(context.Background(), session.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), docB.ID.String())
	assert.Empty(t, questions.purged)
	assert.Empty(t, flashcards.purged)
	assert.Empty(t, store.deleted, "session row must survive a failed cascade")
}

func TestSessionListFiltersByUser(t *testing.T) {
	store := newFakeSessionStore()
	require.NoError(t, store.Create(context.Background(), &model.Session{UserID: "alice", Name: "a"}))
	require.NoError(t, store.Create(context.Background(), &model.Session{UserID: "bob", Name: "b"}))

	svc := NewSessionService(store, &fakePurger{}, &fakePurger{}, &fakeDocumentRemover{}, logger.NewNop())

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Name)
}
