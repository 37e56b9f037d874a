package mapper

import (
	"encoding/json"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		SessionName:   s.SessionName,
		CreatedAt:     s.CreatedAt.UTC(),
		LastMessageAt: s.LastMessageAt.UTC(),
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		SessionName:   s.SessionName,
		CreatedAt:     s.CreatedAt,
		LastMessageAt: s.LastMessageAt,
	}
}

func (m *ChatMapper) ChatSessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ChatSessionToEntity(s)
	}
	return entities
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var metadata json.RawMessage
	if len(msg.Metadata) > 0 {
		metadata = json.RawMessage(msg.Metadata)
	}

	return &entity.Message{
		Id:           msg.Id,
		UserId:       msg.UserId,
		SessionId:    msg.SessionId,
		Role:         entity.MessageRole(msg.Role),
		Content:      msg.Content,
		ContentPlain: msg.ContentPlain,
		Metadata:     metadata,
		CreatedAt:    msg.CreatedAt.UTC(),
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(msg.Metadata) > 0 {
		metadata = datatypes.JSON(msg.Metadata)
	}

	return &model.Message{
		Id:           msg.Id,
		UserId:       msg.UserId,
		SessionId:    msg.SessionId,
		Role:         string(msg.Role),
		Content:      msg.Content,
		ContentPlain: msg.ContentPlain,
		Metadata:     metadata,
		CreatedAt:    msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
