package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
	"github.com/mduc-2610/doc-agent-mlt/internal/model"
	"github.com/mduc-2610/doc-agent-mlt/internal/storage"
)

type fakeDocumentStore struct {
	docs map[uuid.UUID]*model.Document
	ops  []string
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[uuid.UUID]*model.Document{}}
}

func (f *fakeDocumentStore) Create(ctx context.Context, doc *model.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	copied := *doc
	f.docs[doc.ID] = &copied
	f.ops = append(f.ops, "create")
	return nil
}

func (f *fakeDocumentStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentStore) FindAll(ctx context.Context) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeDocumentStore) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range f.docs {
		if doc.SessionID == sessionID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) Update(ctx context.Context, doc *model.Document) error {
	copied := *doc
	f.docs[doc.ID] = &copied
	f.ops = append(f.ops, "update")
	return nil
}

func (f *fakeDocumentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProcessingStatus) error {
	if doc, ok := f.docs[id]; ok {
		doc.ProcessingStatus = status
	}
	f.ops = append(f.ops, "status:"+string(status))
	return nil
}

func (f *fakeDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.docs, id)
	f.ops = append(f.ops, "delete")
	return nil
}

type fakeChunkStore struct {
	byDocument  map[uuid.UUID][]model.DocumentChunk
	createCalls int
	createErr   error
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{byDocument: map[uuid.UUID][]model.DocumentChunk{}}
}

func (f *fakeChunkStore) CreateBatch(ctx context.Context, chunks []model.DocumentChunk) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	for i := range chunks {
		if chunks[i].ID == uuid.Nil {
			chunks[i].ID = uuid.New()
		}
	}
	if len(chunks) > 0 {
		docID := chunks[0].DocumentID
		f.byDocument[docID] = append(f.byDocument[docID], chunks...)
	}
	return nil
}

func (f *fakeChunkStore) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]model.DocumentChunk, error) {
	return f.byDocument[documentID], nil
}

func (f *fakeChunkStore) ExistsByDocumentID(ctx context.Context, documentID uuid.UUID) (bool, error) {
	return len(f.byDocument[documentID]) > 0, nil
}

func (f *fakeChunkStore) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	delete(f.byDocument, documentID)
	return nil
}

type fakeSummaryRemover struct {
	removed []uuid.UUID
}

func (f *fakeSummaryRemover) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	f.removed = append(f.removed, documentID)
	return nil
}

type fakeSessionCounter struct {
	deltas map[uuid.UUID]int
}

func newFakeSessionCounter() *fakeSessionCounter {
	return &fakeSessionCounter{deltas: map[uuid.UUID]int{}}
}

func (f *fakeSessionCounter) AdjustDocumentCount(ctx context.Context, id uuid.UUID, delta int) error {
	f.deltas[id] += delta
	return nil
}

// memProvider keeps stored files in a map for test assertions.
type memProvider struct {
	files map[string][]byte
}

func newMemProvider() *memProvider {
	return &memProvider{files: map[string][]byte{}}
}

func (p *memProvider) Name() string { return "mem" }

func (p *memProvider) Write(ctx context.Context, path string, content []byte) error {
	p.files[path] = content
	return nil
}

func (p *memProvider) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := p.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

func (p *memProvider) Delete(ctx context.Context, path string) error {
	delete(p.files, path)
	return nil
}

func (p *memProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := p.files[path]
	return ok, nil
}

func newTestDocumentService(docs *fakeDocumentStore, chunks *fakeChunkStore, store storage.Provider) (*DocumentService, *fakeSessionCounter) {
	sessions := newFakeSessionCounter()
	embeddings := NewEmbeddingService(&fakeEmbedClient{}, 100, 128, logger.NewNop())
	svc := NewDocumentService(docs, chunks, &fakeSummaryRemover{}, sessions, embeddings, store, logger.NewNop())
	return svc, sessions
}

func TestIngestTextStoresContentAndChunks(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := newFakeChunkStore()
	store := newMemProvider()
	svc, sessions := newTestDocumentService(docs, chunks, store)

	sessionID := uuid.New()
	doc, err := svc.IngestText(context.Background(), sessionID, "notes.txt", "text", "Photosynthesis converts light into chemical energy.")
	require.NoError(t, err)

	assert.Equal(t, model.ProcessingStatusCompleted, doc.ProcessingStatus)
	assert.Equal(t, storage.ContentPath(doc.ID.String()), doc.ContentFilePath)
	assert.Contains(t, store.files, doc.ContentFilePath)
	assert.NotEmpty(t, chunks.byDocument[doc.ID])
	assert.Equal(t, 1, sessions.deltas[sessionID])
}

func TestChunkAndEmbedIdempotent(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := newFakeChunkStore()
	svc, _ := newTestDocumentService(docs, chunks, newMemProvider())

	docID := uuid.New()
	text := "The mitochondria is the powerhouse of the cell. " + strings.Repeat("Energy flows through membranes. ", 10)

	first, err := svc.ChunkAndEmbed(context.Background(), docID, text)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.ChunkAndEmbed(context.Background(), docID, text)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
	assert.Equal(t, 1, chunks.createCalls, "second call must not re-chunk")
}

func TestChunkAndEmbedEmptyText(t *testing.T) {
	svc, _ := newTestDocumentService(newFakeDocumentStore(), newFakeChunkStore(), newMemProvider())

	chunks, err := svc.ChunkAndEmbed(context.Background(), uuid.New(), "   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestIngestTextCleanupOnFailure(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := newFakeChunkStore()
	chunks.createErr = errors.New("insert failed")
	store := newMemProvider()
	svc, sessions := newTestDocumentService(docs, chunks, store)

	sessionID := uuid.New()
	_, err := svc.IngestText(context.Background(), sessionID, "notes.txt", "text", "Some content that will fail to persist.")
	require.Error(t, err)

	assert.Empty(t, docs.docs, "failed document must not linger")
	assert.Empty(t, store.files, "stored files must be cleaned up")
	assert.Equal(t, 0, sessions.deltas[sessionID])

	statusIdx, deleteIdx := -1, -1
	for i, op := range docs.ops {
		switch op {
		case "status:" + string(model.ProcessingStatusFailed):
			statusIdx = i
		case "delete":
			deleteIdx = i
		}
	}
	require.GreaterOrEqual(t, statusIdx, 0, "document must be marked failed")
	require.GreaterOrEqual(t, deleteIdx, 0)
	assert.Less(t, statusIdx, deleteIdx, "failed status must land before the record is removed")
}

func TestIngestUploadKeepsSourceFile(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := newFakeChunkStore()
	store := newMemProvider()
	svc, _ := newTestDocumentService(docs, chunks, store)

	raw := []byte("Cells divide through mitosis and meiosis.")
	doc, err := svc.IngestUpload(context.Background(), uuid.New(), "lecture.txt", raw)
	require.NoError(t, err)

	wantSource := storage.SourcePath(doc.ID.String(), ".txt")
	assert.Equal(t, wantSource, doc.SourceFilePath)
	assert.Equal(t, raw, store.files[wantSource])
	assert.Contains(t, store.files, storage.ContentPath(doc.ID.String()))
	assert.Equal(t, int64(len(raw)), doc.FileSize)
}

func TestDocumentDeleteRemovesChunksAndFiles(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := newFakeChunkStore()
	store := newMemProvider()
	svc, sessions := newTestDocumentService(docs, chunks, store)

	sessionID := uuid.New()
	doc, err := svc.IngestText(context.Background(), sessionID, "notes.txt", "text", "Gravity pulls objects toward each other.")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), doc.ID))

	assert.Empty(t, docs.docs)
	assert.Empty(t, chunks.byDocument[doc.ID])
	assert.NotContains(t, store.files, doc.ContentFilePath)
	assert.Equal(t, 0, sessions.deltas[sessionID])
}
