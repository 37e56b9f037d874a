package contract

import (
	"context"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// Patch applies the non-nil fields and reports how many rows matched.
	Patch(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
