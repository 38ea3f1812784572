package mapper

import (
	"encoding/json"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizMapper struct{}

func NewQuizMapper() *QuizMapper {
	return &QuizMapper{}
}

func (m *QuizMapper) ToEntity(q *model.Quiz) *entity.Quiz {
	if q == nil {
		return nil
	}

	var updatedAt *time.Time
	if !q.UpdatedAt.IsZero() {
		t := q.UpdatedAt
		updatedAt = &t
	}

	return &entity.Quiz{
		Id:            q.Id,
		ChatSessionId: q.ChatSessionId,
		UserId:        q.UserId,
		Title:         q.Title,
		QuizType:      q.QuizType,
		Status:        q.Status,
		DocumentIds:   jsonToUUIDs(q.DocumentIds),
		NumQuestions:  q.NumQuestions,
		ErrorMessage:  q.ErrorMessage,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *QuizMapper) ToModel(q *entity.Quiz) *model.Quiz {
	if q == nil {
		return nil
	}

	var updatedAt time.Time
	if q.UpdatedAt != nil {
		updatedAt = *q.UpdatedAt
	}

	return &model.Quiz{
		Id:            q.Id,
		ChatSessionId: q.ChatSessionId,
		UserId:        q.UserId,
		Title:         q.Title,
		QuizType:      q.QuizType,
		Status:        q.Status,
		DocumentIds:   uuidsToJSON(q.DocumentIds),
		NumQuestions:  q.NumQuestions,
		ErrorMessage:  q.ErrorMessage,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     gorm.DeletedAt{},
	}
}

func (m *QuizMapper) ToEntities(models []*model.Quiz) []*entity.Quiz {
	entities := make([]*entity.Quiz, 0, len(models))
	for _, q := range models {
		entities = append(entities, m.ToEntity(q))
	}
	return entities
}

func (m *QuizMapper) QuestionToEntity(q *model.QuizQuestion) *entity.QuizQuestion {
	if q == nil {
		return nil
	}

	var options []string
	_ = json.Unmarshal(q.Options, &options)

	var correct []int
	_ = json.Unmarshal(q.CorrectAnswers, &correct)

	return &entity.QuizQuestion{
		Id:             q.Id,
		QuizId:         q.QuizId,
		QuestionText:   q.QuestionText,
		QuestionType:   q.QuestionType,
		Options:        options,
		CorrectAnswers: correct,
		Explanation:    q.Explanation,
		OrderIndex:     q.OrderIndex,
	}
}

func (m *QuizMapper) QuestionToModel(q *entity.QuizQuestion) *model.QuizQuestion {
	if q == nil {
		return nil
	}

	options, _ := json.Marshal(q.Options)
	correct, _ := json.Marshal(q.CorrectAnswers)

	return &model.QuizQuestion{
		Id:             q.Id,
		QuizId:         q.QuizId,
		QuestionText:   q.QuestionText,
		QuestionType:   q.QuestionType,
		Options:        datatypes.JSON(options),
		CorrectAnswers: datatypes.JSON(correct),
		Explanation:    q.Explanation,
		OrderIndex:     q.OrderIndex,
	}
}

func (m *QuizMapper) QuestionsToEntities(models []*model.QuizQuestion) []*entity.QuizQuestion {
	entities := make([]*entity.QuizQuestion, 0, len(models))
	for _, q := range models {
		entities = append(entities, m.QuestionToEntity(q))
	}
	return entities
}

func (m *QuizMapper) QuestionsToModels(entities []*entity.QuizQuestion) []*model.QuizQuestion {
	models := make([]*model.QuizQuestion, 0, len(entities))
	for _, q := range entities {
		models = append(models, m.QuestionToModel(q))
	}
	return models
}

func jsonToUUIDs(raw datatypes.JSON) []uuid.UUID {
	if len(raw) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

func uuidsToJSON(ids []uuid.UUID) datatypes.JSON {
	if len(ids) == 0 {
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
