// Package studio generates study material (quizzes, flashcards) from
// document content with an LLM.
package studio

// Quiz types a caller can request.
const (
	QuizSingleChoice   = "single_choice"
	QuizMultipleChoice = "multiple_choice"
	QuizMixed          = "mixed"
)

// Per-question types after normalization.
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
)

// rawQuestion mirrors the JSON shape the LLM is asked to produce.
// Models are inconsistent about correct_answer vs correct_answers, so
// both are accepted and reconciled during normalization.
type rawQuestion struct {
	Question       string   `json:"question"`
	Type           string   `json:"type"`
	Options        []string `json:"options"`
	CorrectAnswer  *int     `json:"correct_answer"`
	CorrectAnswers []int    `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
}

type rawFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Question is one normalized quiz question.
type Question struct {
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	Options        []string `json:"options"`
	CorrectAnswers []int    `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
	OrderIndex     int      `json:"order_index"`
}

// Flashcard is one normalized two-sided card.
type Flashcard struct {
	FrontText  string `json:"front_text"`
	BackText   string `json:"back_text"`
	OrderIndex int    `json:"order_index"`
}
