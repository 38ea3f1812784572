package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/vectorstore"
)

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type documentFixture struct {
	store     *memStore
	blob      *fakeBlobStore
	publisher *capturingPublisher
	index     *cannedIndex
	service   IDocumentService

	userId    uuid.UUID
	sessionId uuid.UUID
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	store := newMemStore()
	nop := logger.NewNopLogger()

	fx := &documentFixture{
		store:     store,
		blob:      newFakeBlobStore(),
		publisher: &capturingPublisher{},
		index:     newCannedIndex(nil),
		userId:    uuid.New(),
		sessionId: uuid.New(),
	}

	store.sessions[fx.sessionId] = &entity.ChatSession{
		Id:     fx.sessionId,
		UserId: fx.userId,
		Title:  "Biology",
	}

	manager, err := vectorstore.NewManager(context.Background(), fx.index, probeEmbedder{}, nop)
	require.NoError(t, err)

	fx.service = NewDocumentService(
		&fakeUowFactory{store: store},
		fx.publisher,
		fx.blob,
		manager,
		nop,
	)
	return fx
}

func TestIngestWebCreatesPendingDocument(t *testing.T) {
	fx := newDocumentFixture(t)

	res, err := fx.service.IngestWeb(context.Background(), fx.userId, &dto.IngestWebRequest{
		ChatSessionId: fx.sessionId,
		URL:           "https://example.com/photosynthesis",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentStatusPending, res.Status)
	assert.Equal(t, "https://example.com/photosynthesis", res.FileName)

	fx.publisher.mu.Lock()
	require.Len(t, fx.publisher.payloads, 1)
	var payload dto.IngestDocumentPayload
	require.NoError(t, json.Unmarshal(fx.publisher.payloads[0], &payload))
	fx.publisher.mu.Unlock()
	assert.Equal(t, res.Id, payload.DocumentId)

	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	doc := fx.store.documents[res.Id]
	require.NotNil(t, doc)
	assert.Equal(t, entity.DocumentSourceWeb, doc.SourceType)
	assert.Equal(t, "https://example.com/photosynthesis", doc.SourceURL)
}

func TestIngestWebRejectsForeignSession(t *testing.T) {
	fx := newDocumentFixture(t)

	_, err := fx.service.IngestWeb(context.Background(), uuid.New(), &dto.IngestWebRequest{
		ChatSessionId: fx.sessionId,
		URL:           "https://example.com",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, fx.publisher.payloads)
}

func TestListReturnsOnlyOwnDocuments(t *testing.T) {
	fx := newDocumentFixture(t)

	mine := uuid.New()
	fx.store.documents[mine] = &entity.Document{
		Id:            mine,
		ChatSessionId: fx.sessionId,
		UserId:        fx.userId,
		FileName:      "notes.txt",
		SourceType:    entity.DocumentSourceFile,
		Status:        entity.DocumentStatusIndexed,
		ChunkCount:    7,
	}
	theirs := uuid.New()
	fx.store.documents[theirs] = &entity.Document{
		Id:            theirs,
		ChatSessionId: fx.sessionId,
		UserId:        uuid.New(),
		FileName:      "secret.txt",
		SourceType:    entity.DocumentSourceFile,
		Status:        entity.DocumentStatusIndexed,
	}

	listed, err := fx.service.List(context.Background(), fx.userId, fx.sessionId)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "notes.txt", listed[0].FileName)
	assert.Equal(t, 7, listed[0].ChunkCount)
}

func TestDeleteRemovesBlobAndRow(t *testing.T) {
	fx := newDocumentFixture(t)

	docId := uuid.New()
	objectPath := fx.sessionId.String() + "/notes.txt"
	fx.store.documents[docId] = &entity.Document{
		Id:            docId,
		ChatSessionId: fx.sessionId,
		UserId:        fx.userId,
		FileName:      "notes.txt",
		ObjectPath:    objectPath,
		SourceType:    entity.DocumentSourceFile,
		Status:        entity.DocumentStatusIndexed,
	}
	fx.blob.objects[objectPath] = "content"

	require.NoError(t, fx.service.Delete(context.Background(), fx.userId, docId))

	assert.Contains(t, fx.blob.deleted, objectPath)
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	assert.Empty(t, fx.store.documents)
}

func TestDeleteUnknownDocument(t *testing.T) {
	fx := newDocumentFixture(t)

	err := fx.service.Delete(context.Background(), fx.userId, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
