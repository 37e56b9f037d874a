package service

import (
	"context"
	"errors"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
)

// IChatService is the user-facing send: the quota is charged and the message
// stored in one transaction, so a refused send leaves no trace and an
// accepted one is never lost.
type IChatService interface {
	Send(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *QuotaLedger
	publisher  IPublisherService
	clock      clock.Clock
	metrics    *metrics.Metrics
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	ledger *QuotaLedger,
	publisher IPublisherService,
	clk clock.Clock,
	m *metrics.Metrics,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		ledger:     ledger,
		publisher:  publisher,
		clock:      clk,
		metrics:    m,
	}
}

func (s *chatService) Send(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	metadata, err := normalizeMetadata(req.Metadata)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage("begin transaction", err)
	}
	defer func() { _ = uow.Rollback() }()

	state, err := s.ledger.Increment(ctx, uow.ChatLimitRepository(), userId, true)
	if err != nil {
		var limitErr *dto.LimitExceededError
		if errors.As(err, &limitErr) {
			s.metrics.RecordQuotaDecision("send", "rejected")
		} else {
			s.metrics.RecordQuotaDecision("send", "error")
		}
		return nil, err
	}

	var session *entity.ChatSession
	if req.SessionId != nil {
		session, err = findOwnedSession(ctx, uow.ChatSessionRepository(), *req.SessionId, userId)
	} else {
		session, err = newSession(ctx, uow.ChatSessionRepository(), userId, entity.DefaultSessionName, s.clock)
	}
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		Id:           uuid.New(),
		UserId:       &userId,
		SessionId:    &session.Id,
		Role:         entity.MessageRoleUser,
		Content:      req.Content,
		ContentPlain: req.ContentPlain,
		Metadata:     metadata,
		CreatedAt:    s.clock.Now(),
	}
	if err := appendMessage(ctx, uow, message); err != nil {
		return nil, err
	}
	session.LastMessageAt = message.CreatedAt

	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage("commit transaction", err)
	}
	s.metrics.RecordQuotaDecision("send", "admitted")

	quota := dto.NewQuotaStateResponse(state)
	s.publisher.Publish(ctx, events.QuotaUpdated, userId, QuotaEventData(quota))
	s.publisher.Publish(ctx, events.MessageCreated, userId, messageEventData(message))

	return &dto.SendMessageResponse{
		Message: dto.NewMessageResponse(message),
		Session: dto.NewSessionResponse(session),
		Quota:   quota,
	}, nil
}
