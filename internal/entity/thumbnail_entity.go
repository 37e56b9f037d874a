package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultThumbnailLanguage = "en"

type Thumbnail struct {
	Id           int64
	Uuid         uuid.UUID
	UserId       *uuid.UUID
	VideoTitle   *string
	Prompt       *string
	ModelUsed    *string
	ThumbnailURL *string
	Language     string
	Rating       int
	IsPublic     bool
	Views        int
	Tags         []string
	AiFeedback   *string
	CreatedAt    time.Time
}

// ThumbnailPatch carries the mutable thumbnail fields; nil means unchanged.
type ThumbnailPatch struct {
	VideoTitle   *string
	Prompt       *string
	ModelUsed    *string
	ThumbnailURL *string
	Language     *string
	Rating       *int
	IsPublic     *bool
	Tags         *[]string
	AiFeedback   *string
}
