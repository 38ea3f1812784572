package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentId    uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceLabel   string    `gorm:"type:varchar(16);not null"`
	FileName      string    `gorm:"type:text"`
	ChunkIndex    int       `gorm:"not null;default:0"`
	StartChar     int       `gorm:"not null;default:0"`
	EndChar       int       `gorm:"not null;default:0"`
	Score         float64   `gorm:"not null;default:0"`
	Snippet       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	// Relationships
	ChatMessage *ChatMessage `gorm:"foreignKey:ChatMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Document    *Document    `gorm:"foreignKey:DocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ChatCitation) TableName() string {
	return "chat_citations"
}
