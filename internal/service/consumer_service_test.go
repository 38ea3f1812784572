package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/vectorstore"
)

const ingestTestTopic = "INGEST_DOCUMENT_TEST"

type consumerFixture struct {
	store     *memStore
	blob      *fakeBlobStore
	index     *cannedIndex
	pubSub    *gochannel.GoChannel
	publisher IPublisherService

	sessionId uuid.UUID
	userId    uuid.UUID
}

func newConsumerFixture(t *testing.T) *consumerFixture {
	t.Helper()

	store := newMemStore()
	nop := logger.NewNopLogger()

	fx := &consumerFixture{
		store:     store,
		blob:      newFakeBlobStore(),
		index:     newCannedIndex(nil),
		pubSub:    gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		sessionId: uuid.New(),
		userId:    uuid.New(),
	}
	t.Cleanup(func() { fx.pubSub.Close() })

	store.sessions[fx.sessionId] = &entity.ChatSession{
		Id:     fx.sessionId,
		UserId: fx.userId,
		Title:  "Biology",
	}

	manager, err := vectorstore.NewManager(context.Background(), fx.index, probeEmbedder{}, nop)
	require.NoError(t, err)

	fx.publisher = NewPublisherService(fx.pubSub, ingestTestTopic)

	consumer := NewConsumerService(
		fx.pubSub,
		ingestTestTopic,
		&fakeUowFactory{store: store},
		fx.blob,
		manager,
		nop,
	)
	require.NoError(t, consumer.Consume(context.Background()))
	return fx
}

func (fx *consumerFixture) seedDocument(t *testing.T, fileName, content string) uuid.UUID {
	t.Helper()
	docId := uuid.New()
	objectPath := fx.sessionId.String() + "/" + docId.String() + "-" + fileName
	fx.store.documents[docId] = &entity.Document{
		Id:            docId,
		ChatSessionId: fx.sessionId,
		UserId:        fx.userId,
		FileName:      fileName,
		ObjectPath:    objectPath,
		SourceType:    entity.DocumentSourceFile,
		Status:        entity.DocumentStatusPending,
	}
	fx.blob.objects[objectPath] = content
	return docId
}

func (fx *consumerFixture) publishIngest(t *testing.T, docId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.IngestDocumentPayload{DocumentId: docId})
	require.NoError(t, err)
	require.NoError(t, fx.publisher.Publish(context.Background(), payload))
}

func (fx *consumerFixture) documentStatus(docId uuid.UUID) string {
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	if d, ok := fx.store.documents[docId]; ok {
		return d.Status
	}
	return ""
}

func TestConsumerIndexesTextDocument(t *testing.T) {
	fx := newConsumerFixture(t)
	docId := fx.seedDocument(t, "notes.txt",
		"Photosynthesis converts light energy into chemical energy. "+
			"The light reactions capture photons and the Calvin cycle fixes carbon.")

	fx.publishIngest(t, docId)

	assert.Eventually(t, func() bool {
		return fx.documentStatus(docId) == entity.DocumentStatusIndexed
	}, 3*time.Second, 10*time.Millisecond)

	fx.store.mu.Lock()
	doc := fx.store.documents[docId]
	fx.store.mu.Unlock()
	assert.Positive(t, doc.ChunkCount)
	assert.Empty(t, doc.ErrorMessage)

	fx.index.mu.Lock()
	defer fx.index.mu.Unlock()
	require.Len(t, fx.index.upserted, doc.ChunkCount)
	payload := fx.index.upserted[0].Payload
	assert.Equal(t, docId.String(), payload["document_id"])
	assert.Equal(t, "notes.txt", payload["file_name"])
	assert.Equal(t, 0, payload["chunk_index"])
	assert.Equal(t, 0, payload["start_char"])
}

func TestConsumerMarksUnsupportedFormatFailed(t *testing.T) {
	fx := newConsumerFixture(t)
	docId := fx.seedDocument(t, "notes.bin", "\x00\x01\x02")

	fx.publishIngest(t, docId)

	assert.Eventually(t, func() bool {
		return fx.documentStatus(docId) == entity.DocumentStatusFailed
	}, 3*time.Second, 10*time.Millisecond)

	fx.store.mu.Lock()
	doc := fx.store.documents[docId]
	fx.store.mu.Unlock()
	assert.NotEmpty(t, doc.ErrorMessage)

	fx.index.mu.Lock()
	defer fx.index.mu.Unlock()
	assert.Empty(t, fx.index.upserted)
}

func TestConsumerDropsUnknownDocument(t *testing.T) {
	fx := newConsumerFixture(t)

	fx.publishIngest(t, uuid.New())

	// Nothing to assert beyond the consumer not indexing anything;
	// give the message a moment to be handled.
	time.Sleep(100 * time.Millisecond)
	fx.index.mu.Lock()
	defer fx.index.mu.Unlock()
	assert.Empty(t, fx.index.upserted)
}
