package studio

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/llm"
)

const flashcardPrompt = `You are a teacher who creates study flashcards from documents.

Based on the document content below, create %d flashcards to help a student memorize the material.

Requirements:
1. Each flashcard has two sides:
   - Front: the question or concept to remember
   - Back: the answer or explanation
2. Flashcards must stay close to the document content
3. Questions must be clear and short
4. Answers must be complete but concise
5. Vary the question kinds: definitions, comparisons, examples, applications

Return the result as JSON in this format:
` + "```json" + `
{
  "flashcards": [
    {
      "front": "Question or concept?",
      "back": "Answer or explanation"
    }
  ]
}
` + "```" + `

DOCUMENT CONTENT:
%s
`

// FlashcardGenerator creates flashcards from document content.
type FlashcardGenerator struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewFlashcardGenerator(provider llm.LLMProvider, log logger.ILogger) *FlashcardGenerator {
	return &FlashcardGenerator{
		provider: provider,
		logger:   log,
	}
}

// GenerateFlashcards asks the LLM for numCards flashcards over the
// content and returns them normalized with stable order indexes.
func (g *FlashcardGenerator) GenerateFlashcards(ctx context.Context, content string, numCards int) ([]Flashcard, error) {
	if numCards <= 0 {
		numCards = 20
	}

	prompt := fmt.Sprintf(flashcardPrompt, numCards, TruncateContent(content, DefaultMaxContentChars))

	g.logger.Info("Studio", "Generating flashcards", map[string]interface{}{
		"count": numCards,
	})

	response, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Flashcards []rawFlashcard `json:"flashcards"`
	}
	if err := parseJSONResponse(response, &parsed); err != nil {
		g.logger.Error("Studio", "Failed to parse flashcard response", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if len(parsed.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards found in LLM response", apperr.ErrGeneration)
	}

	cards := make([]Flashcard, 0, len(parsed.Flashcards))
	for idx, card := range parsed.Flashcards {
		cards = append(cards, Flashcard{
			FrontText:  card.Front,
			BackText:   card.Back,
			OrderIndex: idx,
		})
	}
	return cards, nil
}
