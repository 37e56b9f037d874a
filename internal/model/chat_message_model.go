package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId       *uuid.UUID `gorm:"type:uuid;index"`
	SessionId    *uuid.UUID `gorm:"type:uuid;index"`
	Role         string     `gorm:"type:varchar(20);not null"`
	Content      string     `gorm:"type:text;not null"`
	ContentPlain *string    `gorm:"type:text"`
	Metadata     datatypes.JSON
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (Message) TableName() string {
	return "haley_messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	return nil
}
