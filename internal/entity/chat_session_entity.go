package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the isolation boundary for retrieval. Documents,
// messages and studio items all hang off a session, and each session
// owns its own vector collection.
type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// Collection returns the vector store key for this session. Each
// session owns its own collection, so dropping a session removes
// exactly its own chunks.
func (s *ChatSession) Collection() string {
	return s.Id.String()
}
