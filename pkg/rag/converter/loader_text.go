package converter

import (
	"fmt"
	"os"

	"ai-docchat-be/internal/apperr"
)

// TextLoader reads plain text and markdown files verbatim.
type TextLoader struct{}

func (l *TextLoader) CanHandle(ext string) bool {
	return ext == ".txt" || ext == ".md"
}

func (l *TextLoader) Load(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrConversion, path, err)
	}
	return []Document{{
		Content:  string(data),
		Metadata: map[string]interface{}{"source": path},
	}}, nil
}
