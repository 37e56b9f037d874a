package dto

import (
	"time"

	"haley-companion-be/internal/entity"

	"github.com/google/uuid"
)

type CreateThumbnailRequest struct {
	UserId       string   `json:"user_id"`
	VideoTitle   *string  `json:"video_title" validate:"omitempty,max=500"`
	Prompt       *string  `json:"prompt" validate:"omitempty,max=5000"`
	ModelUsed    *string  `json:"model_used" validate:"omitempty,max=100"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,url"`
	Language     *string  `json:"language" validate:"omitempty,min=2,max=10"`
	Rating       *int     `json:"rating" validate:"omitempty,min=0,max=5"`
	IsPublic     *bool    `json:"is_public"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	AiFeedback   *string  `json:"ai_feedback" validate:"omitempty,max=5000"`
}

type UpdateThumbnailRequest struct {
	UserId       string    `json:"user_id"`
	VideoTitle   *string   `json:"video_title" validate:"omitempty,max=500"`
	Prompt       *string   `json:"prompt" validate:"omitempty,max=5000"`
	ModelUsed    *string   `json:"model_used" validate:"omitempty,max=100"`
	ThumbnailURL *string   `json:"thumbnail_url" validate:"omitempty,url"`
	Language     *string   `json:"language" validate:"omitempty,min=2,max=10"`
	Rating       *int      `json:"rating" validate:"omitempty,min=0,max=5"`
	IsPublic     *bool     `json:"is_public"`
	Tags         *[]string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	AiFeedback   *string   `json:"ai_feedback" validate:"omitempty,max=5000"`
}

type ListThumbnailsQuery struct {
	UserId string `query:"userId"`
	Public bool   `query:"public"`
}

type ThumbnailResponse struct {
	Id           int64      `json:"id"`
	Uuid         uuid.UUID  `json:"uuid"`
	UserId       *uuid.UUID `json:"user_id"`
	VideoTitle   *string    `json:"video_title"`
	Prompt       *string    `json:"prompt"`
	ModelUsed    *string    `json:"model_used"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	Language     string     `json:"language"`
	Rating       int        `json:"rating"`
	IsPublic     bool       `json:"is_public"`
	Views        int        `json:"views"`
	Tags         []string   `json:"tags"`
	AiFeedback   *string    `json:"ai_feedback"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewThumbnailResponse(t *entity.Thumbnail) *ThumbnailResponse {
	return &ThumbnailResponse{
		Id:           t.Id,
		Uuid:         t.Uuid,
		UserId:       t.UserId,
		VideoTitle:   t.VideoTitle,
		Prompt:       t.Prompt,
		ModelUsed:    t.ModelUsed,
		ThumbnailURL: t.ThumbnailURL,
		Language:     t.Language,
		Rating:       t.Rating,
		IsPublic:     t.IsPublic,
		Views:        t.Views,
		Tags:         t.Tags,
		AiFeedback:   t.AiFeedback,
		CreatedAt:    t.CreatedAt,
	}
}

func NewThumbnailResponses(thumbs []*entity.Thumbnail) []*ThumbnailResponse {
	res := make([]*ThumbnailResponse, len(thumbs))
	for i, t := range thumbs {
		res[i] = NewThumbnailResponse(t)
	}
	return res
}

type SignedURLRequest struct {
	UserId   string `json:"user_id"`
	Filename string `json:"filename" validate:"required,max=255"`
}

type SignedURLResponse struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expires_at"`
}
