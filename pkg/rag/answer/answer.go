// Package answer turns retrieved chunks into a grounded LLM answer
// with a citation payload. Every chunk becomes a labeled source
// (S1..Sn) so the model and the client can refer back to it.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/vectorstore"
)

const systemPromptTemplate = `You are an intelligent and helpful AI assistant. Your task is to answer user questions accurately.

Instructions:
1. Prioritize using information from the provided "Context" to answer.
2. If the answer is not in the context, use your general knowledge to answer helpfully.
3. Cite sources when possible (e.g., "According to source S1...") if information comes from documents.
4. Answer in %s, clearly and coherently.
5. If there are multiple sources, synthesize them.
6. Format the answer using Markdown (headings, lists).`

// defaultOutputLanguage mirrors the question instead of forcing a
// fixed language when none is configured.
const defaultOutputLanguage = "the language of the question"

const questionTemplate = `Context from documents:
%s

Question: %s

Please answer the question based on the context above. If the context doesn't contain the necessary information, state that clearly.`

const emptyContextNotice = "No relevant information was found in the documents."

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 1000
)

// Source is one labeled retrieval hit feeding the answer.
type Source struct {
	SourceID   string  `json:"source_id"`
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	StartChar  int     `json:"start_char"`
	EndChar    int     `json:"end_char"`
	SourcePath string  `json:"source_path"`
}

// Reference is the citation entry returned to the client.
type Reference struct {
	SourceID    string  `json:"source_id"`
	DocumentID  string  `json:"document_id"`
	FileName    string  `json:"file_name"`
	ChunkIndex  int     `json:"chunk_index"`
	Score       float64 `json:"score"`
	Snippet     string  `json:"snippet"`
	StartChar   int     `json:"start_char"`
	EndChar     int     `json:"end_char"`
	SourcePath  string  `json:"source_path"`
	Explanation string  `json:"explanation"`
}

// Result is a synthesized answer with its citations and the context
// that produced it.
type Result struct {
	Query           string      `json:"query"`
	Content         string      `json:"content"`
	References      []Reference `json:"references"`
	ContextUsed     string      `json:"context_used"`
	RetrievedChunks int         `json:"retrieved_chunks"`
}

// Synthesizer renders retrieval hits into a prompt and asks the LLM.
// outputLanguage controls the language the answer is written in.
type Synthesizer struct {
	provider       llm.LLMProvider
	outputLanguage string
	logger         logger.ILogger
}

func NewSynthesizer(provider llm.LLMProvider, outputLanguage string, log logger.ILogger) *Synthesizer {
	if strings.TrimSpace(outputLanguage) == "" {
		outputLanguage = defaultOutputLanguage
	}
	return &Synthesizer{
		provider:       provider,
		outputLanguage: outputLanguage,
		logger:         log,
	}
}

// BuildSources labels retrieval hits S1..Sn and lifts chunk metadata
// into typed source records.
func BuildSources(hits []vectorstore.SearchResult) []Source {
	sources := make([]Source, 0, len(hits))
	for idx, hit := range hits {
		meta := hit.Metadata
		sources = append(sources, Source{
			SourceID:   fmt.Sprintf("S%d", idx+1),
			DocumentID: metaString(meta, "document_id", "unknown"),
			FileName:   metaString(meta, "file_name", "unknown"),
			ChunkIndex: metaInt(meta, "chunk_index"),
			Content:    hit.Content,
			Score:      float64(hit.Score),
			StartChar:  metaInt(meta, "start_char"),
			EndChar:    metaInt(meta, "end_char"),
			SourcePath: metaString(meta, "source", ""),
		})
	}
	return sources
}

// BuildContext formats sources into the context block fed to the LLM.
func BuildContext(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("[Source %s - %s (score: %.2f)]\n%s", s.SourceID, s.FileName, s.Score, s.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Answer generates a grounded answer for the question. A rate limited
// provider surfaces as apperr.ErrRateLimited so the caller can decide
// between retry and fail; every other provider failure is a
// generation error.
func (s *Synthesizer) Answer(ctx context.Context, question string, hits []vectorstore.SearchResult) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", apperr.ErrGeneration)
	}

	sources := BuildSources(hits)
	contextBlock := BuildContext(sources)
	if contextBlock == "" {
		s.logger.Warn("Answer", "Empty context, answering without documents", map[string]interface{}{
			"question": question,
		})
		contextBlock = emptyContextNotice
	}

	history := []llm.Message{
		{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, s.outputLanguage)},
		{Role: "user", Content: fmt.Sprintf(questionTemplate, contextBlock, question)},
	}

	content, err := s.provider.Chat(ctx, history,
		llm.WithTemperature(defaultTemperature),
		llm.WithMaxTokens(defaultMaxTokens),
	)
	if err != nil {
		if errors.Is(err, apperr.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	result := &Result{
		Query:           question,
		Content:         strings.TrimSpace(content),
		References:      buildReferences(sources),
		ContextUsed:     contextBlock,
		RetrievedChunks: len(sources),
	}

	s.logger.Info("Answer", "Answer generated", map[string]interface{}{
		"retrieved_chunks": len(sources),
		"context_length":   len(contextBlock),
	})
	return result, nil
}

func buildReferences(sources []Source) []Reference {
	references := make([]Reference, 0, len(sources))
	for _, s := range sources {
		references = append(references, Reference{
			SourceID:   s.SourceID,
			DocumentID: s.DocumentID,
			FileName:   s.FileName,
			ChunkIndex: s.ChunkIndex,
			Score:      s.Score,
			Snippet:    s.Content,
			StartChar:  s.StartChar,
			EndChar:    s.EndChar,
			SourcePath: s.SourcePath,
			Explanation: fmt.Sprintf("Excerpt from %s, chunk #%d (chars %d-%d)",
				s.FileName, s.ChunkIndex, s.StartChar, s.EndChar),
		})
	}
	return references
}

func metaString(meta map[string]interface{}, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func metaInt(meta map[string]interface{}, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		// values round-tripped through JSON arrive as float64
		return int(v)
	default:
		return 0
	}
}
