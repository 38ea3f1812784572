package implementation

import (
	"context"
	"errors"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/mapper"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FlashcardSetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FlashcardMapper
}

func NewFlashcardSetRepository(db *gorm.DB) contract.FlashcardSetRepository {
	return &FlashcardSetRepositoryImpl{
		db:     db,
		mapper: mapper.NewFlashcardMapper(),
	}
}

func (r *FlashcardSetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FlashcardSetRepositoryImpl) Create(ctx context.Context, set *entity.FlashcardSet) error {
	m := r.mapper.SetToModel(set)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.SetToEntity(m)
	return nil
}

func (r *FlashcardSetRepositoryImpl) Update(ctx context.Context, set *entity.FlashcardSet) error {
	m := r.mapper.SetToModel(set)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.SetToEntity(m)
	return nil
}

func (r *FlashcardSetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FlashcardSet{}, id).Error
}

func (r *FlashcardSetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FlashcardSet, error) {
	var m model.FlashcardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SetToEntity(&m), nil
}

func (r *FlashcardSetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FlashcardSet, error) {
	var models []*model.FlashcardSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SetsToEntities(models), nil
}
