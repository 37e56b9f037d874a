// FILE: internal/service/user_service.go
package service

import (
	"context"
	"strings"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/mailer"
	"haley-companion-be/internal/repository/memory"
	"haley-companion-be/internal/repository/specification"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
)

type IUserService interface {
	GetById(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	GetByEmail(ctx context.Context, email string) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// Delete removes the user together with everything it owns.
	Delete(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	publisher    IPublisherService
	feedCache    *memory.FeedCache
	clock        clock.Clock
	logger       logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher IPublisherService,
	feedCache *memory.FeedCache,
	clk clock.Clock,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory:   uowFactory,
		emailService: emailService,
		publisher:    publisher,
		feedCache:    feedCache,
		clock:        clk,
		logger:       log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetById(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Storage("load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*dto.UserResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.Validation("email is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Storage("load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	email := normalizeEmail(req.Email)
	existing, err := repo.FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Storage("load user", err)
	}
	if existing != nil {
		return nil, apperror.DuplicateKey("email already registered")
	}

	role := entity.UserRoleUser
	if req.Role != "" {
		role = entity.UserRole(req.Role)
	}

	user := &entity.User{
		Id:          uuid.New(),
		Email:       email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Role:        role,
		CreatedAt:   s.clock.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		return nil, apperror.Translate("create user", err)
	}

	go s.sendWelcome(user)

	return dto.NewUserResponse(user), nil
}

func (s *userService) sendWelcome(user *entity.User) {
	if s.emailService == nil {
		return
	}
	name := ""
	if user.DisplayName != nil {
		name = *user.DisplayName
	}
	if err := s.emailService.SendWelcome(user.Email, name); err != nil {
		s.logger.Warn("UserService", "Failed to send welcome email", map[string]interface{}{
			"user_id": user.Id,
			"error":   err.Error(),
		})
	}
}

func (s *userService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	patch := entity.UserPatch{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		patch.Email = &email
	}
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		patch.Role = &role
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	if patch.Email != nil {
		holder, err := repo.FindOne(ctx, specification.ByEmail{Email: *patch.Email})
		if err != nil {
			return nil, apperror.Storage("load user", err)
		}
		if holder != nil && holder.Id != userId {
			return nil, apperror.DuplicateKey("email already registered")
		}
	}

	matched, err := repo.Patch(ctx, userId, patch)
	if err != nil {
		return nil, apperror.Translate("update user", err)
	}
	if matched == 0 {
		return nil, apperror.NotFound("user")
	}

	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Storage("load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Storage("begin transaction", err)
	}
	defer func() {
		// Rollback after a successful Commit only reports "no transaction".
		_ = uow.Rollback()
	}()

	// Children first so the delete also holds on databases without ON DELETE CASCADE.
	if err := uow.MessageRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperror.Storage("delete messages", err)
	}
	if err := uow.ChatSessionRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperror.Storage("delete sessions", err)
	}
	if err := uow.ThumbnailRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperror.Storage("delete thumbnails", err)
	}
	if err := uow.ChatLimitRepository().DeleteByUserId(ctx, userId); err != nil {
		return apperror.Storage("delete quota", err)
	}

	deleted, err := uow.UserRepository().Delete(ctx, userId)
	if err != nil {
		return apperror.Storage("delete user", err)
	}
	if deleted == 0 {
		return apperror.NotFound("user")
	}

	if err := uow.Commit(); err != nil {
		return apperror.Storage("commit transaction", err)
	}
	// The user's public thumbnails went with it.
	s.feedCache.Invalidate()

	s.publisher.Publish(ctx, events.UserDeleted, userId, map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}
