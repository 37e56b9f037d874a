package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Thumbnail struct {
	Id           int64      `gorm:"primaryKey;autoIncrement"`
	Uuid         uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	UserId       *uuid.UUID `gorm:"type:uuid;index"`
	VideoTitle   *string    `gorm:"type:text"`
	Prompt       *string    `gorm:"type:text"`
	ModelUsed    *string    `gorm:"type:varchar(100)"`
	ThumbnailURL *string    `gorm:"column:thumbnail_url;type:text"`
	Language     string     `gorm:"type:varchar(10);not null;default:'en'"`
	Rating       int        `gorm:"not null;default:0"`
	IsPublic     bool       `gorm:"not null;default:false;index"`
	Views        int        `gorm:"not null;default:0"`
	Tags         datatypes.JSONSlice[string]
	AiFeedback   *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (Thumbnail) TableName() string {
	return "haley_thumbnails"
}

func (t *Thumbnail) BeforeCreate(tx *gorm.DB) error {
	if t.Uuid == uuid.Nil {
		t.Uuid = uuid.New()
	}
	return nil
}
