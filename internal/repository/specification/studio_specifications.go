package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByQuizID struct {
	QuizID uuid.UUID
}

func (s ByQuizID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("quiz_id = ?", s.QuizID)
}

type ByFlashcardSetID struct {
	FlashcardSetID uuid.UUID
}

func (s ByFlashcardSetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("flashcard_set_id = ?", s.FlashcardSetID)
}

// OrderByIndex sorts generated items into their authored order.
type OrderByIndex struct{}

func (s OrderByIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}
