package contract

import (
	"context"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
)

type FlashcardRepository interface {
	CreateBulk(ctx context.Context, cards []*entity.Flashcard) error
	FindAllBySetId(ctx context.Context, setId uuid.UUID) ([]*entity.Flashcard, error)
	DeleteBySetId(ctx context.Context, setId uuid.UUID) error
}
