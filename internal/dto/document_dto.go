package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestWebRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	URL           string    `json:"url" validate:"required,url"`
}

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	Status   string    `json:"status"`
}

type DocumentResponse struct {
	Id            uuid.UUID  `json:"id"`
	ChatSessionId uuid.UUID  `json:"chat_session_id"`
	FileName      string     `json:"file_name"`
	SourceType    string     `json:"source_type"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	ChunkCount    int        `json:"chunk_count"`
	SizeBytes     int64      `json:"size_bytes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// IngestDocumentPayload is the message body published to the ingestion topic.
type IngestDocumentPayload struct {
	DocumentId uuid.UUID `json:"document_id"`
}
