package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"
)

const (
	DocumentSourceFile = "file"
	DocumentSourceWeb  = "web"
	DocumentSourceAPI  = "api"
)

type Document struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	UserId        uuid.UUID
	FileName      string
	ObjectPath    string
	SourceType    string
	SourceURL     string
	Status        string
	ErrorMessage  string
	ChunkCount    int
	SizeBytes     int64
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
