package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatCitation links an assistant message back to the document chunk it drew from.
type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	DocumentId    uuid.UUID
	SourceLabel   string
	FileName      string
	ChunkIndex    int
	StartChar     int
	EndChar       int
	Score         float64
	Snippet       string
	CreatedAt     time.Time
}
