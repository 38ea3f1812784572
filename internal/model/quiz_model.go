package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title         string         `gorm:"type:varchar(255);not null"`
	QuizType      string         `gorm:"type:varchar(20);not null;default:'mixed'"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	DocumentIds   datatypes.JSON `gorm:"type:jsonb"`
	NumQuestions  int            `gorm:"not null;default:10"`
	ErrorMessage  string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuizId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	QuestionText   string         `gorm:"type:text;not null"`
	QuestionType   string         `gorm:"type:varchar(20);not null;default:'single_choice'"`
	Options        datatypes.JSON `gorm:"type:jsonb;not null"`
	CorrectAnswers datatypes.JSON `gorm:"type:jsonb;not null"`
	Explanation    string         `gorm:"type:text"`
	OrderIndex     int            `gorm:"not null;default:0"`

	// Relationships
	Quiz *Quiz `gorm:"foreignKey:QuizId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
