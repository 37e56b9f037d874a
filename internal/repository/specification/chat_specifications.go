package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.ChatSessionID)
}

// MostRecentActivity orders sessions by their last message, newest first.
type MostRecentActivity struct{}

func (s MostRecentActivity) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("last_message_at DESC").Order("created_at DESC")
}
