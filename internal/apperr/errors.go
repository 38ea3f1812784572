package apperr

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes, workers use them to decide between retry and fail.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrConversion        = errors.New("document conversion failed")
	ErrRateLimited       = errors.New("llm provider rate limited")
	ErrGeneration        = errors.New("llm generation failed")
	ErrParse             = errors.New("llm response parsing failed")
	ErrVectorStore       = errors.New("vector store operation failed")
	ErrForbidden         = errors.New("access denied")
)
