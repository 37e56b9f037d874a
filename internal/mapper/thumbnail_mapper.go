package mapper

import (
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"

	"gorm.io/datatypes"
)

type ThumbnailMapper struct{}

func NewThumbnailMapper() *ThumbnailMapper {
	return &ThumbnailMapper{}
}

func (m *ThumbnailMapper) ToEntity(t *model.Thumbnail) *entity.Thumbnail {
	if t == nil {
		return nil
	}

	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &entity.Thumbnail{
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
		Tags:         tags,
		AiFeedback:   t.AiFeedback,
		CreatedAt:    t.CreatedAt.UTC(),
	}
}

func (m *ThumbnailMapper) ToModel(t *entity.Thumbnail) *model.Thumbnail {
	if t == nil {
		return nil
	}

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	return &model.Thumbnail{
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
		Tags:         datatypes.JSONSlice[string](tags),
		AiFeedback:   t.AiFeedback,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *ThumbnailMapper) ToEntities(thumbs []*model.Thumbnail) []*entity.Thumbnail {
	entities := make([]*entity.Thumbnail, len(thumbs))
	for i, t := range thumbs {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *ThumbnailMapper) PatchColumns(p entity.ThumbnailPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.VideoTitle != nil {
		cols["video_title"] = *p.VideoTitle
	}
	if p.Prompt != nil {
		cols["prompt"] = *p.Prompt
	}
	if p.ModelUsed != nil {
		cols["model_used"] = *p.ModelUsed
	}
	if p.ThumbnailURL != nil {
		cols["thumbnail_url"] = *p.ThumbnailURL
	}
	if p.Language != nil {
		cols["language"] = *p.Language
	}
	if p.Rating != nil {
		cols["rating"] = *p.Rating
	}
	if p.IsPublic != nil {
		cols["is_public"] = *p.IsPublic
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		cols["tags"] = datatypes.JSONSlice[string](tags)
	}
	if p.AiFeedback != nil {
		cols["ai_feedback"] = *p.AiFeedback
	}
	return cols
}
