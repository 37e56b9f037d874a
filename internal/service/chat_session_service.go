package service

import (
	"context"
	"strings"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/repository/contract"
	"haley-companion-be/internal/repository/specification"
	"haley-companion-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatSessionService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Rename(ctx context.Context, id, userId uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	// Delete removes the session and its messages. A session owned by
	// someone else is reported as not found.
	Delete(ctx context.Context, id, userId uuid.UUID) error
}

type chatSessionService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
}

func NewChatSessionService(uowFactory unitofwork.RepositoryFactory, clk clock.Clock) IChatSessionService {
	return &chatSessionService{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

func (s *chatSessionService) List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.MostRecentActivity{},
	)
	if err != nil {
		return nil, apperror.Storage("list sessions", err)
	}
	return dto.NewSessionResponses(sessions), nil
}

func (s *chatSessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	name := entity.DefaultSessionName
	if req.SessionName != nil && strings.TrimSpace(*req.SessionName) != "" {
		name = strings.TrimSpace(*req.SessionName)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := newSession(ctx, uow.ChatSessionRepository(), userId, name, s.clock)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(session), nil
}

// newSession is shared with the send flow, which opens a session on demand.
func newSession(ctx context.Context, repo contract.ChatSessionRepository, userId uuid.UUID, name string, clk clock.Clock) (*entity.ChatSession, error) {
	now := clk.Now()
	session := &entity.ChatSession{
		Id:            uuid.New(),
		UserId:        userId,
		SessionName:   name,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := repo.Create(ctx, session); err != nil {
		return nil, ownerError("create session", err)
	}
	return session, nil
}

func (s *chatSessionService) Rename(ctx context.Context, id, userId uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	name := strings.TrimSpace(req.SessionName)
	if name == "" {
		return nil, apperror.Validation("session_name is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	matched, err := repo.Rename(ctx, id, userId, name)
	if err != nil {
		return nil, apperror.Storage("rename session", err)
	}
	if matched == 0 {
		return nil, apperror.NotFound("session")
	}

	session, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Storage("load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session")
	}
	return dto.NewSessionResponse(session), nil
}

func (s *chatSessionService) Delete(ctx context.Context, id, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Storage("begin transaction", err)
	}
	defer func() { _ = uow.Rollback() }()

	session, err := findOwnedSession(ctx, uow.ChatSessionRepository(), id, userId)
	if err != nil {
		return err
	}

	if err := uow.MessageRepository().DeleteBySessionId(ctx, session.Id); err != nil {
		return apperror.Storage("delete session messages", err)
	}
	deleted, err := uow.ChatSessionRepository().DeleteOwned(ctx, id, userId)
	if err != nil {
		return apperror.Storage("delete session", err)
	}
	if deleted == 0 {
		return apperror.NotFound("session")
	}

	if err := uow.Commit(); err != nil {
		return apperror.Storage("commit transaction", err)
	}
	return nil
}

func findOwnedSession(ctx context.Context, repo contract.ChatSessionRepository, id, userId uuid.UUID) (*entity.ChatSession, error) {
	session, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Storage("load session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session")
	}
	return session, nil
}

// ownerError turns a foreign key failure on user_id into "user not found".
func ownerError(op string, err error) error {
	err = apperror.Translate(op, err)
	if apperror.IsNotFound(err) {
		return apperror.NotFound("user")
	}
	return err
}
