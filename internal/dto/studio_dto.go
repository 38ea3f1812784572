package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateQuizRequest struct {
	ChatSessionId uuid.UUID   `json:"chat_session_id" validate:"required"`
	DocumentIds   []uuid.UUID `json:"document_ids" validate:"required,min=1"`
	QuizType      string      `json:"quiz_type" validate:"omitempty,oneof=single_choice multiple_choice mixed"`
	NumQuestions  int         `json:"num_questions" validate:"omitempty,min=1,max=50"`
	Title         string      `json:"title"`
}

type QuizResponse struct {
	Id            uuid.UUID  `json:"id"`
	ChatSessionId uuid.UUID  `json:"chat_session_id"`
	Title         string     `json:"title"`
	QuizType      string     `json:"quiz_type"`
	Status        string     `json:"status"`
	NumQuestions  int        `json:"num_questions"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type QuizDetailResponse struct {
	QuizResponse
	Questions []QuizQuestionDTO `json:"questions"`
}

type QuizQuestionDTO struct {
	Id             uuid.UUID `json:"id"`
	QuestionText   string    `json:"question_text"`
	QuestionType   string    `json:"question_type"`
	Options        []string  `json:"options"`
	CorrectAnswers []int     `json:"correct_answers"`
	Explanation    string    `json:"explanation,omitempty"`
	OrderIndex     int       `json:"order_index"`
}

type CreateFlashcardSetRequest struct {
	ChatSessionId uuid.UUID   `json:"chat_session_id" validate:"required"`
	DocumentIds   []uuid.UUID `json:"document_ids" validate:"required,min=1"`
	NumCards      int         `json:"num_cards" validate:"omitempty,min=1,max=100"`
	Title         string      `json:"title"`
}

type FlashcardSetResponse struct {
	Id            uuid.UUID  `json:"id"`
	ChatSessionId uuid.UUID  `json:"chat_session_id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	NumCards      int        `json:"num_cards"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

type FlashcardSetDetailResponse struct {
	FlashcardSetResponse
	Cards []FlashcardDTO `json:"cards"`
}

type FlashcardDTO struct {
	Id         uuid.UUID `json:"id"`
	FrontText  string    `json:"front_text"`
	BackText   string    `json:"back_text"`
	OrderIndex int       `json:"order_index"`
}
