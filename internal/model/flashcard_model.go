package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FlashcardSet struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title         string         `gorm:"type:varchar(255);not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	DocumentIds   datatypes.JSON `gorm:"type:jsonb"`
	NumCards      int            `gorm:"not null;default:20"`
	ErrorMessage  string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (FlashcardSet) TableName() string {
	return "flashcard_sets"
}

type Flashcard struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FlashcardSetId uuid.UUID `gorm:"type:uuid;not null;index"`
	FrontText      string    `gorm:"type:text;not null"`
	BackText       string    `gorm:"type:text;not null"`
	OrderIndex     int       `gorm:"not null;default:0"`

	// Relationships
	FlashcardSet *FlashcardSet `gorm:"foreignKey:FlashcardSetId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
