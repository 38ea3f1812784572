package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Citations []CitationDTO `json:"citations,omitempty"`
}

type CitationDTO struct {
	DocumentId  uuid.UUID `json:"document_id"`
	SourceLabel string    `json:"source_id"`
	FileName    string    `json:"file_name"`
	ChunkIndex  int       `json:"chunk_index"`
	StartChar   int       `json:"start_char"`
	EndChar     int       `json:"end_char"`
	Score       float64   `json:"score"`
	Snippet     string    `json:"snippet"`
	Explanation string    `json:"explanation,omitempty"`
}

type AskRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Question      string    `json:"question" validate:"required"`
	TopK          int       `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type AskResponse struct {
	ChatSessionId uuid.UUID     `json:"chat_session_id"`
	MessageId     uuid.UUID     `json:"message_id"`
	Answer        string        `json:"answer"`
	Citations     []CitationDTO `json:"citations,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
