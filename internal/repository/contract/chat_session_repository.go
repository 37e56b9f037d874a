package contract

import (
	"context"
	"time"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// Rename and DeleteOwned match on both id and owner; zero rows means not found.
	Rename(ctx context.Context, id, userId uuid.UUID, name string) (int64, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteOwned(ctx context.Context, id, userId uuid.UUID) (int64, error)
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
