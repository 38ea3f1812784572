package mapper

import (
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"
)

type FlashcardMapper struct{}

func NewFlashcardMapper() *FlashcardMapper {
	return &FlashcardMapper{}
}

func (m *FlashcardMapper) SetToEntity(s *model.FlashcardSet) *entity.FlashcardSet {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.FlashcardSet{
		Id:            s.Id,
		ChatSessionId: s.ChatSessionId,
		UserId:        s.UserId,
		Title:         s.Title,
		Status:        s.Status,
		DocumentIds:   jsonToUUIDs(s.DocumentIds),
		NumCards:      s.NumCards,
		ErrorMessage:  s.ErrorMessage,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *FlashcardMapper) SetToModel(s *entity.FlashcardSet) *model.FlashcardSet {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.FlashcardSet{
		Id:            s.Id,
		ChatSessionId: s.ChatSessionId,
		UserId:        s.UserId,
		Title:         s.Title,
		Status:        s.Status,
		DocumentIds:   uuidsToJSON(s.DocumentIds),
		NumCards:      s.NumCards,
		ErrorMessage:  s.ErrorMessage,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *FlashcardMapper) SetsToEntities(models []*model.FlashcardSet) []*entity.FlashcardSet {
	entities := make([]*entity.FlashcardSet, 0, len(models))
	for _, s := range models {
		entities = append(entities, m.SetToEntity(s))
	}
	return entities
}

func (m *FlashcardMapper) CardToEntity(c *model.Flashcard) *entity.Flashcard {
	if c == nil {
		return nil
	}

	return &entity.Flashcard{
		Id:             c.Id,
		FlashcardSetId: c.FlashcardSetId,
		FrontText:      c.FrontText,
		BackText:       c.BackText,
		OrderIndex:     c.OrderIndex,
	}
}

func (m *FlashcardMapper) CardToModel(c *entity.Flashcard) *model.Flashcard {
	if c == nil {
		return nil
	}

	return &model.Flashcard{
		Id:             c.Id,
		FlashcardSetId: c.FlashcardSetId,
		FrontText:      c.FrontText,
		BackText:       c.BackText,
		OrderIndex:     c.OrderIndex,
	}
}

func (m *FlashcardMapper) CardsToEntities(models []*model.Flashcard) []*entity.Flashcard {
	entities := make([]*entity.Flashcard, 0, len(models))
	for _, c := range models {
		entities = append(entities, m.CardToEntity(c))
	}
	return entities
}

func (m *FlashcardMapper) CardsToModels(entities []*entity.Flashcard) []*model.Flashcard {
	models := make([]*model.Flashcard, 0, len(entities))
	for _, c := range entities {
		models = append(models, m.CardToModel(c))
	}
	return models
}
