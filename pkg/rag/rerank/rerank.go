// Package rerank rescores retrieved chunks with a cross-encoder style
// model. Cross encoders score query-document pairs directly, which is
// more accurate than vector similarity alone.
package rerank

import (
	"context"
	"sort"
	"sync"

	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/vectorstore"
)

const DefaultTopK = 5

// Scorer scores every document against the query. The returned slice
// is aligned with the input documents.
type Scorer interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

// Reranker lazily constructs its scorer on first use, so processes
// that never rerank never pay the model or connection cost.
type Reranker struct {
	newScorer func() (Scorer, error)
	logger    logger.ILogger

	once   sync.Once
	scorer Scorer
	err    error
}

func New(newScorer func() (Scorer, error), log logger.ILogger) *Reranker {
	return &Reranker{
		newScorer: newScorer,
		logger:    log,
	}
}

// Rerank reorders candidates by cross-encoder score and keeps the topK
// best. Zero or one candidate is returned unchanged without touching
// the scorer.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []vectorstore.SearchResult, topK int) ([]vectorstore.SearchResult, error) {
	if len(candidates) <= 1 {
		return candidates, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	r.once.Do(func() {
		r.logger.Info("Rerank", "Loading scorer", nil)
		r.scorer, r.err = r.newScorer()
	})
	if r.err != nil {
		return nil, r.err
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Content
	}

	scores, err := r.scorer.Score(ctx, query, documents)
	if err != nil {
		return nil, err
	}

	reranked := make([]vectorstore.SearchResult, len(candidates))
	copy(reranked, candidates)
	for i := range reranked {
		if i < len(scores) {
			reranked[i].Score = float32(scores[i])
		}
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if len(reranked) > topK {
		reranked = reranked[:topK]
	}

	r.logger.Info("Rerank", "Candidates reranked", map[string]interface{}{
		"candidates": len(candidates),
		"kept":       len(reranked),
	})
	return reranked, nil
}
