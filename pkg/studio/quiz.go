package studio

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/apperr"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/pkg/llm"
)

const singleChoicePrompt = `You are a teacher who writes multiple choice questions from study material.

Based on the document content below, create %d SINGLE correct answer questions.

Requirements:
1. Each question has 4 options (A, B, C, D)
2. Exactly ONE option is correct
3. Questions must stay close to the document content
4. Questions must be clear and unambiguous
5. Wrong options must be plausible (not trivially dismissable)
6. Include a short explanation for the correct answer

Return the result as JSON in this format:
` + "```json" + `
{
  "questions": [
    {
      "question": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": 0,
      "explanation": "Short explanation"
    }
  ]
}
` + "```" + `

Where correct_answer is the index (0-3) of the correct option.

DOCUMENT CONTENT:
%s
`

const multipleChoicePrompt = `You are a teacher who writes multiple choice questions from study material.

Based on the document content below, create %d MULTIPLE correct answer questions.

Requirements:
1. Each question has 4-5 options
2. Each question has 2-3 correct answers
3. Questions must stay close to the document content
4. Questions must be clear and state "Select all correct answers"
5. Include an explanation for the correct answers

Return the result as JSON in this format:
` + "```json" + `
{
  "questions": [
    {
      "question": "Question text? (Select all correct answers)",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answers": [0, 2],
      "explanation": "Short explanation"
    }
  ]
}
` + "```" + `

Where correct_answers is the list of 0-based indexes of the correct options.

DOCUMENT CONTENT:
%s
`

const mixedPrompt = `You are a teacher who writes multiple choice questions from study material.

Based on the document content below, create %d questions MIXING both kinds:
- About 60%% single correct answer questions (single_choice)
- About 40%% multiple correct answer questions (multiple_choice)

Requirements:
1. Each question has 4 options
2. single_choice questions have exactly 1 correct answer
3. multiple_choice questions have 2-3 correct answers and state "(Select all correct answers)"
4. Questions must stay close to the document content
5. Include an explanation for the answers

Return the result as JSON in this format:
` + "```json" + `
{
  "questions": [
    {
      "question": "Question text?",
      "type": "single_choice",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answers": [0],
      "explanation": "Short explanation"
    },
    {
      "question": "Question text? (Select all correct answers)",
      "type": "multiple_choice",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answers": [0, 2],
      "explanation": "Short explanation"
    }
  ]
}
` + "```" + `

DOCUMENT CONTENT:
%s
`

// QuizGenerator creates quiz questions from document content.
type QuizGenerator struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewQuizGenerator(provider llm.LLMProvider, log logger.ILogger) *QuizGenerator {
	return &QuizGenerator{
		provider: provider,
		logger:   log,
	}
}

func quizPrompt(quizType string) string {
	switch quizType {
	case QuizSingleChoice:
		return singleChoicePrompt
	case QuizMultipleChoice:
		return multipleChoicePrompt
	default:
		return mixedPrompt
	}
}

// GenerateQuestions asks the LLM for numQuestions questions over the
// content and returns them normalized. Rate limit errors bubble up
// unchanged so the job layer can mark the run accordingly.
func (g *QuizGenerator) GenerateQuestions(ctx context.Context, content string, quizType string, numQuestions int) ([]Question, error) {
	if numQuestions <= 0 {
		numQuestions = 10
	}

	prompt := fmt.Sprintf(quizPrompt(quizType), numQuestions, TruncateContent(content, DefaultMaxContentChars))

	g.logger.Info("Studio", "Generating quiz questions", map[string]interface{}{
		"quiz_type": quizType,
		"count":     numQuestions,
	})

	response, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := parseJSONResponse(response, &parsed); err != nil {
		g.logger.Error("Studio", "Failed to parse quiz response", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions found in LLM response", apperr.ErrGeneration)
	}

	return normalizeQuestions(parsed.Questions, quizType), nil
}

// normalizeQuestions reconciles the two answer-key shapes the model
// may produce into one consistent format.
func normalizeQuestions(raw []rawQuestion, quizType string) []Question {
	normalized := make([]Question, 0, len(raw))

	for idx, q := range raw {
		questionType := QuestionSingleChoice
		var correctAnswers []int

		switch quizType {
		case QuizSingleChoice:
			if q.CorrectAnswer != nil {
				correctAnswers = []int{*q.CorrectAnswer}
			} else if len(q.CorrectAnswers) > 0 {
				correctAnswers = q.CorrectAnswers[:1] // take first only
			}
		case QuizMultipleChoice:
			questionType = QuestionMultipleChoice
			correctAnswers = q.CorrectAnswers
		default: // mixed
			// Absent or unrecognized types stay single-choice.
			if q.Type == QuestionMultipleChoice {
				questionType = QuestionMultipleChoice
			}
			correctAnswers = q.CorrectAnswers
			if len(correctAnswers) == 0 && q.CorrectAnswer != nil {
				correctAnswers = []int{*q.CorrectAnswer}
			}
		}

		if correctAnswers == nil {
			correctAnswers = []int{}
		}

		normalized = append(normalized, Question{
			QuestionText:   q.Question,
			QuestionType:   questionType,
			Options:        q.Options,
			CorrectAnswers: correctAnswers,
			Explanation:    q.Explanation,
			OrderIndex:     idx,
		})
	}

	return normalized
}
