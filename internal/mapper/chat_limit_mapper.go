package mapper

import (
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"
)

type ChatLimitMapper struct{}

func NewChatLimitMapper() *ChatLimitMapper {
	return &ChatLimitMapper{}
}

func (m *ChatLimitMapper) ToEntity(l *model.ChatLimit) *entity.ChatLimit {
	if l == nil {
		return nil
	}
	return &entity.ChatLimit{
		Id:           l.Id,
		UserId:       l.UserId,
		MessagesSent: l.MessagesSent,
		LimitResetAt: l.LimitResetAt.UTC(),
		PlanType:     l.PlanType,
		CreatedAt:    l.CreatedAt.UTC(),
	}
}

func (m *ChatLimitMapper) ToModel(l *entity.ChatLimit) *model.ChatLimit {
	if l == nil {
		return nil
	}
	return &model.ChatLimit{
		Id:           l.Id,
		UserId:       l.UserId,
		MessagesSent: l.MessagesSent,
		LimitResetAt: l.LimitResetAt,
		PlanType:     l.PlanType,
		CreatedAt:    l.CreatedAt,
	}
}
