package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionName = "New Chat"

type ChatSession struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	SessionName   string
	CreatedAt     time.Time
	LastMessageAt time.Time
}
