package implementation

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizQuestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuizMapper
}

func NewQuizQuestionRepository(db *gorm.DB) contract.QuizQuestionRepository {
	return &QuizQuestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuizMapper(),
	}
}

func (r *QuizQuestionRepositoryImpl) CreateBulk(ctx context.Context, questions []*entity.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	models := r.mapper.QuestionsToModels(questions)
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*questions[i] = *r.mapper.QuestionToEntity(m)
	}
	return nil
}

func (r *QuizQuestionRepositoryImpl) FindAllByQuizId(ctx context.Context, quizId uuid.UUID) ([]*entity.QuizQuestion, error) {
	var models []*model.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizId).
		Order("order_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.QuestionsToEntities(models), nil
}

func (r *QuizQuestionRepositoryImpl) DeleteByQuizId(ctx context.Context, quizId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("quiz_id = ?", quizId).Delete(&model.QuizQuestion{}).Error
}
