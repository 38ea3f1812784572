package entity

import (
	"time"

	"github.com/google/uuid"
)

// Shared lifecycle for async studio generation jobs (quizzes and flashcard sets).
const (
	GenerationStatusPending    = "pending"
	GenerationStatusGenerating = "generating"
	GenerationStatusCompleted  = "completed"
	GenerationStatusFailed     = "failed"
)

type Quiz struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	Title         string
	QuizType      string
	Status        string
	DocumentIds   []uuid.UUID
	NumQuestions  int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type QuizQuestion struct {
	Id             uuid.UUID
	QuizId         uuid.UUID
	QuestionText   string
	QuestionType   string
	Options        []string
	CorrectAnswers []int
	Explanation    string
	OrderIndex     int
}
