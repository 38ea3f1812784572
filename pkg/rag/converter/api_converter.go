package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-docchat-be/internal/apperr"
)

// APIConverter ingests the raw body of an HTTP endpoint. JSON responses
// are re-rendered with indentation so field names remain searchable.
type APIConverter struct {
	client *http.Client
}

func NewAPIConverter() *APIConverter {
	return &APIConverter{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *APIConverter) Convert(ctx context.Context, source string, metadata map[string]interface{}) ([]Document, error) {
	if !strings.HasPrefix(source, "http") {
		return nil, fmt.Errorf("%w: invalid api url %q", apperr.ErrConversion, source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConversion, err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	// An unreachable source is a missing resource, not a conversion bug.
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", apperr.ErrNotFound, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: fetch %s: status %d", apperr.ErrNotFound, source, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", apperr.ErrConversion, source, err)
	}

	content := string(body)
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if pretty, err := json.MarshalIndent(parsed, "", "  "); err == nil {
			content = string(pretty)
		}
	}

	docs := []Document{{
		Content: content,
		Metadata: map[string]interface{}{
			"source": source,
			"type":   "api",
		},
	}}
	mergeMetadata(docs, metadata)
	return docs, nil
}
