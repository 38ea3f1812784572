package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/vectorstore"
)

type probeEmbedder struct{}

func (probeEmbedder) Generate(_ context.Context, text string, _ string) ([]float32, error) {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = float32(len(text) % (i + 2))
	}
	return vec, nil
}

// cannedIndex returns the same hits for every search.
type cannedIndex struct {
	mu          sync.Mutex
	hits        []vectorstore.ScoredPoint
	dropped     []string
	collections map[string]bool
	upserted    []vectorstore.Point
}

func newCannedIndex(hits []vectorstore.ScoredPoint) *cannedIndex {
	return &cannedIndex{hits: hits, collections: map[string]bool{}}
}

func (c *cannedIndex) CreateCollection(_ context.Context, name string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[name] = true
	return nil
}

func (c *cannedIndex) CollectionExists(_ context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collections[name], nil
}

func (c *cannedIndex) DropCollection(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.collections, name)
	c.dropped = append(c.dropped, name)
	return nil
}

func (c *cannedIndex) Upsert(_ context.Context, _ string, points []vectorstore.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserted = append(c.upserted, points...)
	return nil
}

func (c *cannedIndex) Search(_ context.Context, _ string, _ []float32, k int) ([]vectorstore.ScoredPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k > len(c.hits) {
		k = len(c.hits)
	}
	return c.hits[:k], nil
}

func (c *cannedIndex) DeleteByField(_ context.Context, _ string, _ string, _ interface{}) error {
	return nil
}

type failingScorer struct{}

func (failingScorer) Score(_ context.Context, _ string, _ []string) ([]float64, error) {
	return nil, errors.New("rerank backend down")
}

type reversingScorer struct{}

// Scores later documents higher, so reranking reverses vector order.
func (reversingScorer) Score(_ context.Context, _ string, documents []string) ([]float64, error) {
	scores := make([]float64, len(documents))
	for i := range documents {
		scores[i] = float64(i)
	}
	return scores, nil
}

type chatFixture struct {
	store   *memStore
	index   *cannedIndex
	llm     *fakeLLM
	service IChatbotService

	userId    uuid.UUID
	sessionId uuid.UUID
	docId     uuid.UUID
}

func hitPayload(docId uuid.UUID, fileName string, chunkIndex int, content string) map[string]interface{} {
	return map[string]interface{}{
		"content":     content,
		"document_id": docId.String(),
		"file_name":   fileName,
		"chunk_index": chunkIndex,
		"start_char":  chunkIndex * 100,
		"end_char":    chunkIndex*100 + len(content),
		"source":      fileName,
	}
}

func newChatFixture(t *testing.T, reranker *rerank.Reranker) *chatFixture {
	t.Helper()

	store := newMemStore()
	nop := logger.NewNopLogger()

	fx := &chatFixture{
		store:     store,
		llm:       &fakeLLM{response: "Photosynthesis produces glucose. According to source S1 this happens in the chloroplast."},
		userId:    uuid.New(),
		sessionId: uuid.New(),
		docId:     uuid.New(),
	}

	store.sessions[fx.sessionId] = &entity.ChatSession{
		Id:     fx.sessionId,
		UserId: fx.userId,
		Title:  "Biology",
	}
	store.documents[fx.docId] = &entity.Document{
		Id:            fx.docId,
		ChatSessionId: fx.sessionId,
		UserId:        fx.userId,
		FileName:      "notes.txt",
		ObjectPath:    fx.sessionId.String() + "/notes.txt",
		SourceType:    entity.DocumentSourceFile,
		Status:        entity.DocumentStatusIndexed,
	}

	fx.index = newCannedIndex([]vectorstore.ScoredPoint{
		{Payload: hitPayload(fx.docId, "notes.txt", 0, "Photosynthesis converts light into chemical energy."), Score: 0.91},
		{Payload: hitPayload(fx.docId, "notes.txt", 1, "The chloroplast hosts both reaction stages."), Score: 0.84},
	})

	manager, err := vectorstore.NewManager(context.Background(), fx.index, probeEmbedder{}, nop)
	require.NoError(t, err)

	fx.service = NewChatbotService(
		&fakeUowFactory{store: store},
		manager,
		reranker,
		answer.NewSynthesizer(fx.llm, "", nop),
		nop,
	)
	return fx
}

func TestAskPersistsMessagesAndCitations(t *testing.T) {
	fx := newChatFixture(t, nil)

	res, err := fx.service.Ask(context.Background(), fx.userId, &dto.AskRequest{
		ChatSessionId: fx.sessionId,
		Question:      "What does photosynthesis produce?",
	})
	require.NoError(t, err)

	assert.Contains(t, res.Answer, "glucose")
	require.Len(t, res.Citations, 2)
	assert.Equal(t, "S1", res.Citations[0].SourceLabel)
	assert.Equal(t, fx.docId, res.Citations[0].DocumentId)
	assert.Equal(t, "notes.txt", res.Citations[0].FileName)
	assert.NotEmpty(t, res.Citations[0].Explanation)

	fx.store.mu.Lock()
	messages := len(fx.store.messages)
	citations := len(fx.store.citations)
	fx.store.mu.Unlock()
	assert.Equal(t, 2, messages, "user and assistant messages are persisted")
	assert.Equal(t, 2, citations)

	history, err := fx.service.GetChatHistory(context.Background(), fx.userId, fx.sessionId)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.ChatRoleUser, history[0].Role)
	assert.Equal(t, entity.ChatRoleAssistant, history[1].Role)
	assert.Empty(t, history[0].Citations)
	assert.Len(t, history[1].Citations, 2)
}

func TestAskRejectsForeignSession(t *testing.T) {
	fx := newChatFixture(t, nil)

	_, err := fx.service.Ask(context.Background(), uuid.New(), &dto.AskRequest{
		ChatSessionId: fx.sessionId,
		Question:      "anything",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAskRerankReordersHits(t *testing.T) {
	nop := logger.NewNopLogger()
	reranker := rerank.New(func() (rerank.Scorer, error) { return reversingScorer{}, nil }, nop)
	fx := newChatFixture(t, reranker)

	res, err := fx.service.Ask(context.Background(), fx.userId, &dto.AskRequest{
		ChatSessionId: fx.sessionId,
		Question:      "Where do the reaction stages run?",
		TopK:          2,
	})
	require.NoError(t, err)

	require.Len(t, res.Citations, 2)
	assert.Equal(t, 1, res.Citations[0].ChunkIndex, "reranker promoted the second hit")
	assert.Equal(t, 0, res.Citations[1].ChunkIndex)
}

func TestAskFallsBackWhenRerankFails(t *testing.T) {
	nop := logger.NewNopLogger()
	reranker := rerank.New(func() (rerank.Scorer, error) { return failingScorer{}, nil }, nop)
	fx := newChatFixture(t, reranker)

	res, err := fx.service.Ask(context.Background(), fx.userId, &dto.AskRequest{
		ChatSessionId: fx.sessionId,
		Question:      "What does photosynthesis produce?",
		TopK:          2,
	})
	require.NoError(t, err)

	require.Len(t, res.Citations, 2)
	assert.Equal(t, 0, res.Citations[0].ChunkIndex, "vector order is kept when reranking fails")
}

func TestCreateSessionDefaultsTitle(t *testing.T) {
	fx := newChatFixture(t, nil)

	res, err := fx.service.CreateSession(context.Background(), fx.userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New Chat", res.Title)

	named, err := fx.service.CreateSession(context.Background(), fx.userId, &dto.CreateSessionRequest{Title: "Exam prep"})
	require.NoError(t, err)
	assert.Equal(t, "Exam prep", named.Title)
}

func TestDeleteSessionDropsCollectionAndRows(t *testing.T) {
	fx := newChatFixture(t, nil)

	_, err := fx.service.Ask(context.Background(), fx.userId, &dto.AskRequest{
		ChatSessionId: fx.sessionId,
		Question:      "What does photosynthesis produce?",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteSession(context.Background(), fx.userId, fx.sessionId))

	assert.Len(t, fx.index.dropped, 1)

	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	assert.Empty(t, fx.store.sessions)
	assert.Empty(t, fx.store.messages)
	assert.Empty(t, fx.store.citations)
	assert.Empty(t, fx.store.documents)
}

func TestDeleteSessionRejectsForeignUser(t *testing.T) {
	fx := newChatFixture(t, nil)

	err := fx.service.DeleteSession(context.Background(), uuid.New(), fx.sessionId)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	assert.Len(t, fx.store.sessions, 1)
}
