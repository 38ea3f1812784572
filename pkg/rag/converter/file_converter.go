package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-docchat-be/internal/apperr"
)

// FileLoader extracts text from a local file of a known format.
type FileLoader interface {
	CanHandle(ext string) bool
	Load(path string) ([]Document, error)
}

// FileConverter dispatches a file to the first registered loader that
// handles its extension. Registration order is significant.
type FileConverter struct {
	loaders []FileLoader
}

func NewFileConverter() *FileConverter {
	return &FileConverter{
		loaders: []FileLoader{
			&TextLoader{},
			&PDFLoader{},
			&WordLoader{},
			&CSVLoader{},
		},
	}
}

// RegisterLoader appends a loader to the registry. Loaders registered
// earlier win when extensions overlap.
func (c *FileConverter) RegisterLoader(l FileLoader) {
	c.loaders = append(c.loaders, l)
}

func (c *FileConverter) Convert(_ context.Context, source string, metadata map[string]interface{}) ([]Document, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: file %s", apperr.ErrNotFound, source)
	}

	ext := strings.ToLower(filepath.Ext(source))
	for _, loader := range c.loaders {
		if !loader.CanHandle(ext) {
			continue
		}
		docs, err := loader.Load(source)
		if err != nil {
			return nil, err
		}
		mergeMetadata(docs, metadata)
		return docs, nil
	}

	return nil, fmt.Errorf("%w: no loader for %q", apperr.ErrUnsupportedFormat, ext)
}
