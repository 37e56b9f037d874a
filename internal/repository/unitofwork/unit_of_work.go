package unitofwork

import (
	"context"

	"haley-companion-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	MessageRepository() contract.MessageRepository
	ThumbnailRepository() contract.ThumbnailRepository
	ChatLimitRepository() contract.ChatLimitRepository
}
