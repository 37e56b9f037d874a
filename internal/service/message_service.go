package service

import (
	"bytes"
	"context"
	"encoding/json"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/repository/specification"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
)

const (
	DefaultMessagePageSize = 100
	MaxMessagePageSize     = 1000
)

// MessageFilter selects either a user's history (paginated, newest first)
// or one session (chronological). With both set the session must belong to
// the user.
type MessageFilter struct {
	UserId    *uuid.UUID
	SessionId *uuid.UUID
	Limit     int
	Offset    int
}

type IMessageService interface {
	List(ctx context.Context, filter MessageFilter) ([]*dto.MessageResponse, error)
	Create(ctx context.Context, userId *uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error)
	Delete(ctx context.Context, id, userId uuid.UUID) error
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	clock      clock.Clock
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService, clk clock.Clock) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clk,
	}
}

func (s *messageService) List(ctx context.Context, filter MessageFilter) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.MessageRepository()

	if filter.SessionId != nil {
		if filter.UserId != nil {
			if _, err := findOwnedSession(ctx, uow.ChatSessionRepository(), *filter.SessionId, *filter.UserId); err != nil {
				return nil, err
			}
		}
		messages, err := repo.FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: *filter.SessionId},
			specification.Chronological{},
		)
		if err != nil {
			return nil, apperror.Storage("list messages", err)
		}
		return dto.NewMessageResponses(messages), nil
	}

	if filter.UserId == nil {
		return nil, apperror.Validation("userId or sessionId is required")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperror.Validation("limit and offset must not be negative")
	}
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultMessagePageSize
	}
	if limit > MaxMessagePageSize {
		limit = MaxMessagePageSize
	}

	messages, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: *filter.UserId},
		specification.NewestFirst{},
		specification.Pagination{Limit: limit, Offset: filter.Offset},
	)
	if err != nil {
		return nil, apperror.Storage("list messages", err)
	}
	return dto.NewMessageResponses(messages), nil
}

func (s *messageService) Create(ctx context.Context, userId *uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	role := entity.MessageRole(req.Role)
	if !role.Valid() {
		return nil, apperror.Validation("role must be one of: user assistant")
	}
	if req.SessionId != nil && userId == nil {
		return nil, apperror.Validation("user_id is required when session_id is set")
	}
	metadata, err := normalizeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage("begin transaction", err)
	}
	defer func() { _ = uow.Rollback() }()

	if req.SessionId != nil {
		if _, err := findOwnedSession(ctx, uow.ChatSessionRepository(), *req.SessionId, *userId); err != nil {
			return nil, err
		}
	}

	message := &entity.Message{
		Id:           uuid.New(),
		UserId:       userId,
		SessionId:    req.SessionId,
		Role:         role,
		Content:      req.Content,
		ContentPlain: req.ContentPlain,
		Metadata:     metadata,
		CreatedAt:    s.clock.Now(),
	}
	if err := appendMessage(ctx, uow, message); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage("commit transaction", err)
	}

	if userId != nil {
		s.publisher.Publish(ctx, events.MessageCreated, *userId, messageEventData(message))
	}
	return dto.NewMessageResponse(message), nil
}

// appendMessage stores message and moves its session's last activity to the
// message time. It expects uow to be inside a transaction.
func appendMessage(ctx context.Context, uow unitofwork.UnitOfWork, message *entity.Message) error {
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return ownerError("create message", err)
	}
	if message.SessionId != nil {
		if err := uow.ChatSessionRepository().Touch(ctx, *message.SessionId, message.CreatedAt); err != nil {
			return apperror.Storage("touch session", err)
		}
	}
	return nil
}

func (s *messageService) Delete(ctx context.Context, id, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.MessageRepository().DeleteOwned(ctx, id, userId)
	if err != nil {
		return apperror.Storage("delete message", err)
	}
	if deleted == 0 {
		return apperror.NotFound("message")
	}
	return nil
}

// normalizeMetadata keeps metadata nil unless it is a JSON value other than null.
func normalizeMetadata(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, apperror.Validation("metadata must be valid JSON")
	}
	return json.RawMessage(trimmed), nil
}

func messageEventData(m *entity.Message) map[string]interface{} {
	data := map[string]interface{}{
		"message_id": m.Id.String(),
		"role":       string(m.Role),
		"created_at": m.CreatedAt,
	}
	if m.SessionId != nil {
		data["session_id"] = m.SessionId.String()
	}
	return data
}
