// Package converter turns external sources (uploaded files, web pages,
// API responses) into plain-text documents ready for chunking.
package converter

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/apperr"
)

// Document is the extraction result for one logical unit of a source,
// for example a single PDF page.
type Document struct {
	Content  string
	Metadata map[string]interface{}
}

// Converter extracts documents from a source. The extra metadata, when
// given, is merged into every produced document.
type Converter interface {
	Convert(ctx context.Context, source string, metadata map[string]interface{}) ([]Document, error)
}

const (
	KindFile = "file"
	KindWeb  = "web"
	KindAPI  = "api"
)

// New returns the converter for a source kind.
func New(kind string) (Converter, error) {
	switch kind {
	case KindFile:
		return NewFileConverter(), nil
	case KindWeb:
		return NewWebConverter(), nil
	case KindAPI:
		return NewAPIConverter(), nil
	default:
		return nil, fmt.Errorf("%w: converter kind %q", apperr.ErrUnsupportedFormat, kind)
	}
}

func mergeMetadata(docs []Document, extra map[string]interface{}) {
	if len(extra) == 0 {
		return
	}
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]interface{}, len(extra))
		}
		for k, v := range extra {
			docs[i].Metadata[k] = v
		}
	}
}
