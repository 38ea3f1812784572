package embedding

import "context"

// Task types hint the provider at how the text will be used. Providers
// that have no notion of task type are free to ignore it.
const (
	TaskDocument = "retrieval_document"
	TaskQuery    = "retrieval_query"
)

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}
