// Package vectorstore manages per-session vector collections. The
// Index interface abstracts the concrete backend (Qdrant over REST or
// pgvector inside Postgres); the Manager layers embedding, collection
// lifecycle and handle caching on top of it.
package vectorstore

import "context"

// Point is one stored chunk vector with its payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// ScoredPoint is a search hit. Score is cosine similarity, higher is
// more relevant.
type ScoredPoint struct {
	Payload map[string]interface{}
	Score   float32
}

// Index is the minimal contract a vector backend must fulfil.
type Index interface {
	CreateCollection(ctx context.Context, name string, vectorSize int) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	DropCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, k int) ([]ScoredPoint, error)
	DeleteByField(ctx context.Context, collection string, field string, value interface{}) error
}
