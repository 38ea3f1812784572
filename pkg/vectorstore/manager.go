package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/embedding"
)

const (
	collectionPrefix = "chat_"

	// dimensionProbe is embedded once at startup to discover the vector
	// size of the configured embedding model.
	dimensionProbe = "__dimension_probe__"
)

// IndexedChunk is a chunk ready for indexing. The content is embedded,
// the metadata travels into the point payload.
type IndexedChunk struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Content  string
	Metadata map[string]interface{}
	Score    float32
}

// Manager owns one vector collection per chat session. Collection
// handles are cached so the exists-check round trip only happens the
// first time a session is touched by this process.
type Manager struct {
	index      Index
	embedder   embedding.EmbeddingProvider
	logger     logger.ILogger
	vectorSize int

	mu      sync.Mutex
	handles *gocache.Cache
}

// NewManager probes the embedding model for its dimension and returns a
// ready manager. The probe failing means the embedding backend is down,
// which the caller should treat as fatal.
func NewManager(ctx context.Context, index Index, embedder embedding.EmbeddingProvider, log logger.ILogger) (*Manager, error) {
	probe, err := embedder.Generate(ctx, dimensionProbe, embedding.TaskDocument)
	if err != nil {
		return nil, fmt.Errorf("embedding dimension probe: %w", err)
	}
	if len(probe) == 0 {
		return nil, fmt.Errorf("embedding dimension probe returned empty vector")
	}

	log.Info("VectorStore", "Manager initialized", map[string]interface{}{
		"vector_size": len(probe),
	})

	return &Manager{
		index:      index,
		embedder:   embedder,
		logger:     log,
		vectorSize: len(probe),
		handles:    gocache.New(12*time.Hour, 30*time.Minute),
	}, nil
}

// VectorSize returns the probed embedding dimension.
func (m *Manager) VectorSize() int {
	return m.vectorSize
}

// CollectionName returns the collection owned by a chat session.
func (m *Manager) CollectionName(sessionID string) string {
	return collectionPrefix + sessionID
}

// EnsureCollection creates the session collection if it does not
// already exist. Safe for concurrent callers.
func (m *Manager) EnsureCollection(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("%w: session id must be provided", apperr.ErrVectorStore)
	}

	name := m.CollectionName(sessionID)
	if _, found := m.handles.Get(name); found {
		return name, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have created it while we waited for the lock
	if _, found := m.handles.Get(name); found {
		return name, nil
	}

	exists, err := m.index.CollectionExists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrVectorStore, err)
	}
	if !exists {
		if err := m.index.CreateCollection(ctx, name, m.vectorSize); err != nil {
			return "", fmt.Errorf("%w: create collection %s: %v", apperr.ErrVectorStore, name, err)
		}
		m.logger.Info("VectorStore", "Collection created", map[string]interface{}{
			"collection":  name,
			"vector_size": m.vectorSize,
		})
	}

	m.handles.Set(name, struct{}{}, gocache.DefaultExpiration)
	return name, nil
}

// AddChunks embeds and persists chunks into the session collection.
// An empty chunk list is a no-op.
func (m *Manager) AddChunks(ctx context.Context, sessionID string, chunks []IndexedChunk) error {
	if len(chunks) == 0 {
		m.logger.Warn("VectorStore", "Empty chunk list received, skip ingestion", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil
	}

	name, err := m.EnsureCollection(ctx, sessionID)
	if err != nil {
		return err
	}

	points := make([]Point, len(chunks))
	for i, chunk := range chunks {
		vector, err := m.embedder.Generate(ctx, chunk.Content, embedding.TaskDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
		}

		payload := make(map[string]interface{}, len(chunk.Metadata)+1)
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		payload["content"] = chunk.Content

		points[i] = Point{
			ID:      chunk.ID,
			Vector:  vector,
			Payload: payload,
		}
	}

	if err := m.index.Upsert(ctx, name, points); err != nil {
		return fmt.Errorf("%w: upsert into %s: %v", apperr.ErrVectorStore, name, err)
	}

	m.logger.Info("VectorStore", "Chunks persisted", map[string]interface{}{
		"collection": name,
		"count":      len(points),
	})
	return nil
}

// Search embeds the query and returns the k most similar chunks in the
// session collection.
func (m *Manager) Search(ctx context.Context, sessionID string, query string, k int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", apperr.ErrVectorStore)
	}
	if k <= 0 {
		k = 5
	}

	name, err := m.EnsureCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	vector, err := m.embedder.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := m.index.Search(ctx, name, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", apperr.ErrVectorStore, name, err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, p := range points {
		content, _ := p.Payload["content"].(string)
		metadata := make(map[string]interface{}, len(p.Payload))
		for key, v := range p.Payload {
			if key == "content" {
				continue
			}
			metadata[key] = v
		}
		results = append(results, SearchResult{
			Content:  content,
			Metadata: metadata,
			Score:    p.Score,
		})
	}
	return results, nil
}

// DeleteDocument removes every chunk of a document from the session
// collection.
func (m *Manager) DeleteDocument(ctx context.Context, sessionID string, documentID string) error {
	name, err := m.EnsureCollection(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := m.index.DeleteByField(ctx, name, "document_id", documentID); err != nil {
		return fmt.Errorf("%w: delete document %s: %v", apperr.ErrVectorStore, documentID, err)
	}

	m.logger.Info("VectorStore", "Document chunks deleted", map[string]interface{}{
		"collection":  name,
		"document_id": documentID,
	})
	return nil
}

// DropSession deletes the whole collection of a chat session and
// evicts its cached handle.
func (m *Manager) DropSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id must be provided", apperr.ErrVectorStore)
	}

	name := m.CollectionName(sessionID)
	if err := m.index.DropCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: drop collection %s: %v", apperr.ErrVectorStore, name, err)
	}

	m.handles.Delete(name)
	m.logger.Info("VectorStore", "Collection dropped", map[string]interface{}{
		"collection": name,
	})
	return nil
}
