package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	FileName      string         `gorm:"type:varchar(255);not null"`
	ObjectPath    string         `gorm:"type:varchar(1024);not null"`
	SourceType    string         `gorm:"type:varchar(20);not null;default:'file'"`
	SourceURL     string         `gorm:"type:text"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorMessage  string         `gorm:"type:text"`
	ChunkCount    int            `gorm:"not null;default:0"`
	SizeBytes     int64          `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
