package contract

import (
	"context"

	"ai-docchat-be/internal/entity"

	"github.com/google/uuid"
)

type QuizQuestionRepository interface {
	CreateBulk(ctx context.Context, questions []*entity.QuizQuestion) error
	FindAllByQuizId(ctx context.Context, quizId uuid.UUID) ([]*entity.QuizQuestion, error)
	DeleteByQuizId(ctx context.Context, quizId uuid.UUID) error
}
