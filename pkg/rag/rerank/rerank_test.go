package rerank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/vectorstore"
)

type fakeScorer struct {
	scores []float64
	calls  int
}

func (f *fakeScorer) Score(_ context.Context, _ string, docs []string) ([]float64, error) {
	f.calls++
	return f.scores[:len(docs)], nil
}

func result(content string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{Content: content, Score: score}
}

func TestRerankIdentityOnSingleCandidate(t *testing.T) {
	created := 0
	r := New(func() (Scorer, error) {
		created++
		return &fakeScorer{}, nil
	}, logger.NewNopLogger())

	in := []vectorstore.SearchResult{result("only", 0.5)}
	out, err := r.Rerank(context.Background(), "q", in, 5)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	// scorer must not be constructed for trivial inputs
	assert.Equal(t, 0, created)

	out, err = r.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, created)
}

func TestRerankSortsByScoreAndTruncates(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.1, 0.9, 0.5}}
	r := New(func() (Scorer, error) { return scorer, nil }, logger.NewNopLogger())

	in := []vectorstore.SearchResult{
		result("low", 0.99),
		result("high", 0.01),
		result("mid", 0.50),
	}
	out, err := r.Rerank(context.Background(), "q", in, 2)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].Content)
	assert.InDelta(t, 0.9, float64(out[0].Score), 1e-6)
	assert.Equal(t, "mid", out[1].Content)
}

func TestRerankScorerConstructedOnce(t *testing.T) {
	created := 0
	scorer := &fakeScorer{scores: []float64{0.2, 0.8}}
	r := New(func() (Scorer, error) {
		created++
		return scorer, nil
	}, logger.NewNopLogger())

	in := []vectorstore.SearchResult{result("a", 0), result("b", 0)}
	for i := 0; i < 3; i++ {
		_, err := r.Rerank(context.Background(), "q", in, 5)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 3, scorer.calls)
}

func TestRerankScorerInitFailureIsSticky(t *testing.T) {
	created := 0
	r := New(func() (Scorer, error) {
		created++
		return nil, errors.New("model load failed")
	}, logger.NewNopLogger())

	in := []vectorstore.SearchResult{result("a", 0), result("b", 0)}
	_, err := r.Rerank(context.Background(), "q", in, 5)
	assert.Error(t, err)
	_, err = r.Rerank(context.Background(), "q", in, 5)
	assert.Error(t, err)
	assert.Equal(t, 1, created)
}

func TestRerankDoesNotMutateInput(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.1, 0.9}}
	r := New(func() (Scorer, error) { return scorer, nil }, logger.NewNopLogger())

	in := []vectorstore.SearchResult{result("a", 0.7), result("b", 0.3)}
	_, err := r.Rerank(context.Background(), "q", in, 5)
	require.NoError(t, err)

	assert.Equal(t, "a", in[0].Content)
	assert.InDelta(t, 0.7, float64(in[0].Score), 1e-6)
}
