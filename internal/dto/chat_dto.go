package dto

import (
	"encoding/json"
	"time"

	"haley-companion-be/internal/entity"

	"github.com/google/uuid"
)

// Sessions

type CreateSessionRequest struct {
	UserId      string  `json:"user_id"`
	SessionName *string `json:"session_name" validate:"omitempty,min=1,max=255"`
}

type UpdateSessionRequest struct {
	SessionName string `json:"session_name" validate:"required,min=1,max=255"`
}

type SessionResponse struct {
	Id            uuid.UUID `json:"id"`
	UserId        uuid.UUID `json:"user_id"`
	SessionName   string    `json:"session_name"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

func NewSessionResponse(s *entity.ChatSession) *SessionResponse {
	return &SessionResponse{
		Id:            s.Id,
		UserId:        s.UserId,
		SessionName:   s.SessionName,
		CreatedAt:     s.CreatedAt,
		LastMessageAt: s.LastMessageAt,
	}
}

func NewSessionResponses(sessions []*entity.ChatSession) []*SessionResponse {
	res := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		res[i] = NewSessionResponse(s)
	}
	return res
}

// Messages

type CreateMessageRequest struct {
	UserId       string          `json:"user_id"`
	SessionId    *uuid.UUID      `json:"session_id"`
	Role         string          `json:"role" validate:"required,oneof=user assistant"`
	Content      string          `json:"content" validate:"required,max=20000"`
	ContentPlain *string         `json:"content_plain" validate:"omitempty,max=20000"`
	Metadata     json.RawMessage `json:"metadata"`
}

type ListMessagesQuery struct {
	UserId    string `query:"userId"`
	SessionId string `query:"sessionId"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

type MessageResponse struct {
	Id           uuid.UUID       `json:"id"`
	UserId       *uuid.UUID      `json:"user_id"`
	SessionId    *uuid.UUID      `json:"session_id"`
	Role         string          `json:"role"`
	Content      string          `json:"content"`
	ContentPlain *string         `json:"content_plain"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewMessageResponse(m *entity.Message) *MessageResponse {
	return &MessageResponse{
		Id:           m.Id,
		UserId:       m.UserId,
		SessionId:    m.SessionId,
		Role:         string(m.Role),
		Content:      m.Content,
		ContentPlain: m.ContentPlain,
		Metadata:     m.Metadata,
		CreatedAt:    m.CreatedAt,
	}
}

func NewMessageResponses(msgs []*entity.Message) []*MessageResponse {
	res := make([]*MessageResponse, len(msgs))
	for i, m := range msgs {
		res[i] = NewMessageResponse(m)
	}
	return res
}

// Send flow

// SendMessageRequest is a user turn that has to pass the daily quota.
type SendMessageRequest struct {
	UserId       string          `json:"user_id"`
	SessionId    *uuid.UUID      `json:"session_id"`
	Content      string          `json:"content" validate:"required,max=20000"`
	ContentPlain *string         `json:"content_plain" validate:"omitempty,max=20000"`
	Metadata     json.RawMessage `json:"metadata"`
}

type SendMessageResponse struct {
	Message *MessageResponse    `json:"message"`
	Session *SessionResponse    `json:"session"`
	Quota   *QuotaStateResponse `json:"quota"`
}
