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

type FlashcardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FlashcardMapper
}

func NewFlashcardRepository(db *gorm.DB) contract.FlashcardRepository {
	return &FlashcardRepositoryImpl{
		db:     db,
		mapper: mapper.NewFlashcardMapper(),
	}
}

func (r *FlashcardRepositoryImpl) CreateBulk(ctx context.Context, cards []*entity.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	models := r.mapper.CardsToModels(cards)
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*cards[i] = *r.mapper.CardToEntity(m)
	}
	return nil
}

func (r *FlashcardRepositoryImpl) FindAllBySetId(ctx context.Context, setId uuid.UUID) ([]*entity.Flashcard, error) {
	var models []*model.Flashcard
	err := r.db.WithContext(ctx).
		Where("flashcard_set_id = ?", setId).
		Order("order_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.CardsToEntities(models), nil
}

func (r *FlashcardRepositoryImpl) DeleteBySetId(ctx context.Context, setId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("flashcard_set_id = ?", setId).Delete(&model.Flashcard{}).Error
}
