package entity

import (
	"time"

	"github.com/google/uuid"
)

type FlashcardSet struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	Title         string
	Status        string
	DocumentIds   []uuid.UUID
	NumCards      int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type Flashcard struct {
	Id             uuid.UUID
	FlashcardSetId uuid.UUID
	FrontText      string
	BackText       string
	OrderIndex     int
}
