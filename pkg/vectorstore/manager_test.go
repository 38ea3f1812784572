package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
)

type fakeEmbedder struct {
	dimension int
	calls     []string
	fail      bool
}

func (f *fakeEmbedder) Generate(_ context.Context, text string, _ string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("embedder down")
	}
	f.calls = append(f.calls, text)
	vec := make([]float32, f.dimension)
	for i := range vec {
		vec[i] = float32(len(text))
	}
	return vec, nil
}

type fakeIndex struct {
	mu          sync.Mutex
	collections map[string]int
	points      map[string][]Point
	created     int
	existCalls  int
	searchHits  []ScoredPoint
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		collections: map[string]int{},
		points:      map[string][]Point{},
	}
}

func (f *fakeIndex) CreateCollection(_ context.Context, name string, vectorSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[name] = vectorSize
	f.created++
	return nil
}

func (f *fakeIndex) CollectionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existCalls++
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeIndex) DropCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, name)
	delete(f.points, name)
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, collection string, points []Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[collection] = append(f.points[collection], points...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, collection string, _ []float32, k int) ([]ScoredPoint, error) {
	if len(f.searchHits) > k {
		return f.searchHits[:k], nil
	}
	return f.searchHits, nil
}

func (f *fakeIndex) DeleteByField(_ context.Context, collection string, field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.points[collection][:0]
	for _, p := range f.points[collection] {
		if p.Payload[field] != value {
			kept = append(kept, p)
		}
	}
	f.points[collection] = kept
	return nil
}

func newTestManager(t *testing.T, index Index) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), index, &fakeEmbedder{dimension: 4}, logger.NewNopLogger())
	require.NoError(t, err)
	return m
}

func TestNewManagerProbesDimension(t *testing.T) {
	m := newTestManager(t, newFakeIndex())
	assert.Equal(t, 4, m.VectorSize())
}

func TestNewManagerProbeFailure(t *testing.T) {
	_, err := NewManager(context.Background(), newFakeIndex(), &fakeEmbedder{fail: true}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestCollectionName(t *testing.T) {
	m := newTestManager(t, newFakeIndex())
	assert.Equal(t, "chat_abc123", m.CollectionName("abc123"))
}

func TestEnsureCollectionCreatesOnce(t *testing.T) {
	index := newFakeIndex()
	m := newTestManager(t, index)

	name, err := m.EnsureCollection(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "chat_s1", name)

	// second call is served from the handle cache
	existBefore := index.existCalls
	_, err = m.EnsureCollection(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, existBefore, index.existCalls)
	assert.Equal(t, 1, index.created)
	assert.Equal(t, 4, index.collections["chat_s1"])
}

func TestEnsureCollectionEmptySession(t *testing.T) {
	m := newTestManager(t, newFakeIndex())
	_, err := m.EnsureCollection(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrVectorStore)
}

func TestAddChunksEmptyIsNoop(t *testing.T) {
	index := newFakeIndex()
	m := newTestManager(t, index)

	require.NoError(t, m.AddChunks(context.Background(), "s1", nil))
	assert.Equal(t, 0, index.created)
}

func TestAddChunksStoresContentInPayload(t *testing.T) {
	index := newFakeIndex()
	m := newTestManager(t, index)

	chunks := []IndexedChunk{
		{ID: "c1", Content: "first chunk", Metadata: map[string]interface{}{"document_id": "d1", "chunk_index": 0}},
		{ID: "c2", Content: "second chunk", Metadata: map[string]interface{}{"document_id": "d1", "chunk_index": 1}},
	}
	require.NoError(t, m.AddChunks(context.Background(), "s1", chunks))

	stored := index.points["chat_s1"]
	require.Len(t, stored, 2)
	assert.Equal(t, "first chunk", stored[0].Payload["content"])
	assert.Equal(t, "d1", stored[0].Payload["document_id"])
	assert.Len(t, stored[0].Vector, 4)
}

func TestSearchSplitsContentFromMetadata(t *testing.T) {
	index := newFakeIndex()
	index.searchHits = []ScoredPoint{
		{Score: 0.91, Payload: map[string]interface{}{"content": "hit text", "document_id": "d1"}},
	}
	m := newTestManager(t, index)

	results, err := m.Search(context.Background(), "s1", "question", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hit text", results[0].Content)
	assert.Equal(t, "d1", results[0].Metadata["document_id"])
	assert.NotContains(t, results[0].Metadata, "content")
	assert.InDelta(t, 0.91, float64(results[0].Score), 1e-6)
}

func TestSearchEmptyQuery(t *testing.T) {
	m := newTestManager(t, newFakeIndex())
	_, err := m.Search(context.Background(), "s1", "", 5)
	assert.ErrorIs(t, err, apperr.ErrVectorStore)
}

func TestDeleteDocumentFiltersByField(t *testing.T) {
	index := newFakeIndex()
	m := newTestManager(t, index)

	require.NoError(t, m.AddChunks(context.Background(), "s1", []IndexedChunk{
		{ID: "c1", Content: "a", Metadata: map[string]interface{}{"document_id": "d1"}},
		{ID: "c2", Content: "b", Metadata: map[string]interface{}{"document_id": "d2"}},
	}))

	require.NoError(t, m.DeleteDocument(context.Background(), "s1", "d1"))

	stored := index.points["chat_s1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "d2", stored[0].Payload["document_id"])
}

func TestDropSessionEvictsHandle(t *testing.T) {
	index := newFakeIndex()
	m := newTestManager(t, index)

	_, err := m.EnsureCollection(context.Background(), "s1")
	require.NoError(t, err)
	require.NoError(t, m.DropSession(context.Background(), "s1"))

	assert.NotContains(t, index.collections, "chat_s1")

	// re-ensuring after a drop must create the collection again
	_, err = m.EnsureCollection(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, index.created)
}
