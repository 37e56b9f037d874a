package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username    *string   `gorm:"type:varchar(100)"`
	DisplayName *string   `gorm:"type:varchar(255)"`
	AvatarURL   *string   `gorm:"type:text"`
	Role        string    `gorm:"type:varchar(50);not null;default:'user'"`
	CreatedAt   time.Time `gorm:"not null"`

	ChatSessions []ChatSession `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Messages     []Message     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Thumbnails   []Thumbnail   `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	ChatLimit    *ChatLimit    `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "haley_users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}
