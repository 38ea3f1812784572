package converter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/apperr"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileConverterMissingFile(t *testing.T) {
	c := NewFileConverter()
	_, err := c.Convert(context.Background(), "/nonexistent/file.txt", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFileConverterUnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "image.png", "not really an image")
	c := NewFileConverter()
	_, err := c.Convert(context.Background(), path, nil)
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFormat)
}

func TestFileConverterTextFile(t *testing.T) {
	path := writeTempFile(t, "notes.md", "# Heading\n\nBody text.")
	c := NewFileConverter()

	docs, err := c.Convert(context.Background(), path, map[string]interface{}{"document_id": "d1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Heading\n\nBody text.", docs[0].Content)
	assert.Equal(t, path, docs[0].Metadata["source"])
	assert.Equal(t, "d1", docs[0].Metadata["document_id"])
}

func TestFileConverterCSV(t *testing.T) {
	path := writeTempFile(t, "grades.csv", "name,score\nalice,91\nbob,85\n")
	c := NewFileConverter()

	docs, err := c.Convert(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "name, score\nalice, 91\nbob, 85", docs[0].Content)
}

func TestFileConverterFirstLoaderWins(t *testing.T) {
	c := NewFileConverter()
	c.RegisterLoader(&stubLoader{ext: ".txt", content: "from stub"})

	path := writeTempFile(t, "a.txt", "from file")
	docs, err := c.Convert(context.Background(), path, nil)
	require.NoError(t, err)
	// the built-in text loader is registered first
	assert.Equal(t, "from file", docs[0].Content)
}

func TestFileConverterCustomLoaderExtension(t *testing.T) {
	c := NewFileConverter()
	c.RegisterLoader(&stubLoader{ext: ".log", content: "stub content"})

	path := writeTempFile(t, "a.log", "ignored")
	docs, err := c.Convert(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub content", docs[0].Content)
}

func TestFactoryKinds(t *testing.T) {
	for _, kind := range []string{KindFile, KindWeb, KindAPI} {
		c, err := New(kind)
		require.NoError(t, err)
		assert.NotNil(t, c)
	}

	_, err := New("ftp")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFormat)
}

func TestWebConverterRejectsNonHTTP(t *testing.T) {
	c := NewWebConverter()
	_, err := c.Convert(context.Background(), "file:///etc/passwd", nil)
	assert.ErrorIs(t, err, apperr.ErrConversion)
}

func TestAPIConverterRejectsNonHTTP(t *testing.T) {
	c := NewAPIConverter()
	_, err := c.Convert(context.Background(), "not-a-url", nil)
	assert.ErrorIs(t, err, apperr.ErrConversion)
}

func TestWebConverterUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := NewWebConverter()
	_, err := c.Convert(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrConversion)
}

func TestAPIConverterErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewAPIConverter()
	_, err := c.Convert(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrConversion)
}

func TestAPIConverterPrettyPrintsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"name":"alice","score":91}`))
	}))
	defer srv.Close()

	c := NewAPIConverter()
	docs, err := c.Convert(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "\"name\": \"alice\"")
	assert.Equal(t, "api", docs[0].Metadata["type"])
}

type stubLoader struct {
	ext     string
	content string
	fail    bool
}

func (s *stubLoader) CanHandle(ext string) bool { return ext == s.ext }

func (s *stubLoader) Load(path string) ([]Document, error) {
	if s.fail {
		return nil, errors.New("stub failure")
	}
	return []Document{{Content: s.content, Metadata: map[string]interface{}{"source": path}}}, nil
}
