package converter

import (
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"ai-docchat-be/internal/apperr"
)

const webUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// WebConverter fetches a page and extracts the readable article text.
type WebConverter struct {
	client *http.Client
}

func NewWebConverter() *WebConverter {
	return &WebConverter{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *WebConverter) Convert(ctx context.Context, source string, metadata map[string]interface{}) ([]Document, error) {
	if !strings.HasPrefix(source, "http") {
		return nil, fmt.Errorf("%w: invalid url %q", apperr.ErrConversion, source)
	}

	pageURL, err := nurl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url %q: %v", apperr.ErrConversion, source, err)
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

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: extract %s: %v", apperr.ErrConversion, source, err)
	}

	docs := []Document{{
		Content: strings.TrimSpace(article.TextContent),
		Metadata: map[string]interface{}{
			"source": source,
			"title":  strings.TrimSpace(article.Title),
			"type":   "web",
		},
	}}
	mergeMetadata(docs, metadata)
	return docs, nil
}
