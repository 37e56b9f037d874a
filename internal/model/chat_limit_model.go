package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatLimit is the quota counter row. UserId is unique so the increment can
// initialise it with a single INSERT ... ON CONFLICT DO NOTHING.
type ChatLimit struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	MessagesSent int       `gorm:"not null;default:0"`
	LimitResetAt time.Time `gorm:"not null"`
	PlanType     string    `gorm:"type:varchar(50);not null;default:'free'"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (ChatLimit) TableName() string {
	return "haley_chat_limits"
}

func (l *ChatLimit) BeforeCreate(tx *gorm.DB) error {
	if l.Id == uuid.Nil {
		l.Id = uuid.New()
	}
	return nil
}
