package answer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/vectorstore"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
	lastSystem string
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	for _, msg := range history {
		switch msg.Role {
		case "system":
			f.lastSystem = msg.Content
		case "user":
			f.lastPrompt = msg.Content
		}
	}
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func hit(content, docID, fileName string, chunkIndex, start, end int, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		Content: content,
		Score:   score,
		Metadata: map[string]interface{}{
			"document_id": docID,
			"file_name":   fileName,
			"chunk_index": float64(chunkIndex), // metadata arrives via JSON
			"start_char":  float64(start),
			"end_char":    float64(end),
			"source":      "/uploads/" + fileName,
		},
	}
}

func TestBuildSourcesLabelsInOrder(t *testing.T) {
	sources := BuildSources([]vectorstore.SearchResult{
		hit("a", "d1", "one.pdf", 0, 0, 100, 0.9),
		hit("b", "d2", "two.pdf", 3, 200, 300, 0.8),
	})

	require.Len(t, sources, 2)
	assert.Equal(t, "S1", sources[0].SourceID)
	assert.Equal(t, "S2", sources[1].SourceID)
	assert.Equal(t, "d2", sources[1].DocumentID)
	assert.Equal(t, 3, sources[1].ChunkIndex)
	assert.Equal(t, 200, sources[1].StartChar)
}

func TestBuildSourcesMissingMetadata(t *testing.T) {
	sources := BuildSources([]vectorstore.SearchResult{
		{Content: "orphan", Score: 0.5, Metadata: map[string]interface{}{}},
	})

	require.Len(t, sources, 1)
	assert.Equal(t, "unknown", sources[0].DocumentID)
	assert.Equal(t, "unknown", sources[0].FileName)
	assert.Equal(t, 0, sources[0].ChunkIndex)
}

func TestBuildContextFormat(t *testing.T) {
	ctx := BuildContext(BuildSources([]vectorstore.SearchResult{
		hit("alpha text", "d1", "doc.pdf", 0, 0, 10, 0.92),
		hit("beta text", "d1", "doc.pdf", 1, 5, 15, 0.81),
	}))

	assert.Contains(t, ctx, "[Source S1 - doc.pdf (score: 0.92)]\nalpha text")
	assert.Contains(t, ctx, "[Source S2 - doc.pdf (score: 0.81)]\nbeta text")
	assert.Contains(t, ctx, "\n\n---\n\n")
}

func TestAnswerBuildsReferences(t *testing.T) {
	provider := &fakeLLM{response: "  According to S1, alpha.  "}
	s := NewSynthesizer(provider, "", logger.NewNopLogger())

	res, err := s.Answer(context.Background(), "what is alpha?", []vectorstore.SearchResult{
		hit("alpha text", "d1", "doc.pdf", 2, 40, 50, 0.9),
	})
	require.NoError(t, err)

	assert.Equal(t, "According to S1, alpha.", res.Content)
	assert.Equal(t, 1, res.RetrievedChunks)
	require.Len(t, res.References, 1)

	ref := res.References[0]
	assert.Equal(t, "S1", ref.SourceID)
	assert.Equal(t, "alpha text", ref.Snippet)
	assert.Equal(t, "Excerpt from doc.pdf, chunk #2 (chars 40-50)", ref.Explanation)

	// the prompt carries the question and the labeled context
	assert.Contains(t, provider.lastPrompt, "what is alpha?")
	assert.Contains(t, provider.lastPrompt, "[Source S1 - doc.pdf")
	assert.Contains(t, provider.lastSystem, "Cite sources")
}

func TestAnswerOutputLanguage(t *testing.T) {
	provider := &fakeLLM{response: "Die Antwort."}
	s := NewSynthesizer(provider, "German", logger.NewNopLogger())

	_, err := s.Answer(context.Background(), "what is alpha?", nil)
	require.NoError(t, err)
	assert.Contains(t, provider.lastSystem, "Answer in German")
}

func TestAnswerOutputLanguageDefault(t *testing.T) {
	provider := &fakeLLM{response: "ok"}
	s := NewSynthesizer(provider, "  ", logger.NewNopLogger())

	_, err := s.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, provider.lastSystem, "Answer in the language of the question")
}

func TestAnswerEmptyHitsUsesNotice(t *testing.T) {
	provider := &fakeLLM{response: "I don't have documents on that."}
	s := NewSynthesizer(provider, "", logger.NewNopLogger())

	res, err := s.Answer(context.Background(), "anything?", nil)
	require.NoError(t, err)
	assert.Empty(t, res.References)
	assert.Equal(t, 0, res.RetrievedChunks)
	assert.True(t, strings.Contains(provider.lastPrompt, emptyContextNotice))
}

func TestAnswerEmptyQuestion(t *testing.T) {
	s := NewSynthesizer(&fakeLLM{}, "", logger.NewNopLogger())
	_, err := s.Answer(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, apperr.ErrGeneration)
}

func TestAnswerRateLimitPropagates(t *testing.T) {
	provider := &fakeLLM{err: fmt.Errorf("%w: 429", apperr.ErrRateLimited)}
	s := NewSynthesizer(provider, "", logger.NewNopLogger())

	_, err := s.Answer(context.Background(), "q", []vectorstore.SearchResult{
		hit("a", "d1", "f.pdf", 0, 0, 1, 0.5),
	})
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
	assert.NotErrorIs(t, err, apperr.ErrGeneration)
}

func TestAnswerGenericFailureWrapsGeneration(t *testing.T) {
	provider := &fakeLLM{err: fmt.Errorf("connection refused")}
	s := NewSynthesizer(provider, "", logger.NewNopLogger())

	_, err := s.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, apperr.ErrGeneration)
}
