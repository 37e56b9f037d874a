package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// Message is one conversation turn. Messages are immutable once stored.
type Message struct {
	Id           uuid.UUID
	UserId       *uuid.UUID
	SessionId    *uuid.UUID
	Role         MessageRole
	Content      string
	ContentPlain *string
	Metadata     json.RawMessage
	CreatedAt    time.Time
}
