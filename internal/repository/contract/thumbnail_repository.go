package contract

import (
	"context"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ThumbnailRepository interface {
	Create(ctx context.Context, thumbnail *entity.Thumbnail) error
	PatchOwned(ctx context.Context, id, userId uuid.UUID, patch entity.ThumbnailPatch) (int64, error)
	// IncrementViews is a single "views = views + 1" statement.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thumbnail, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Thumbnail, error)
}
