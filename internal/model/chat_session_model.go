package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionName   string    `gorm:"type:varchar(255);not null;default:'New Chat'"`
	CreatedAt     time.Time `gorm:"not null"`
	LastMessageAt time.Time `gorm:"not null;index"`

	Messages []Message `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
}

func (ChatSession) TableName() string {
	return "haley_chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
