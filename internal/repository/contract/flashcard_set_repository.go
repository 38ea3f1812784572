package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FlashcardSetRepository interface {
	Create(ctx context.Context, set *entity.FlashcardSet) error
	Update(ctx context.Context, set *entity.FlashcardSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error)
}
