package contract

import (
	"context"
	"time"

	"haley-companion-be/internal/entity"

	"github.com/google/uuid"
)

// NoCap disables the free-tier guard on Increment.
const NoCap = -1

type ChatLimitRepository interface {
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.ChatLimit, error)
	// Increment initialises the row if missing, then counts one message in a
	// single conditional UPDATE: an expired window restarts at 1 with
	// reset = now + window, an active one adds 1. With cap >= 0 a free-tier row
	// that already reached cap inside its window is left untouched and
	// admitted is false.
	Increment(ctx context.Context, userId uuid.UUID, now time.Time, window time.Duration, cap int) (record *entity.ChatLimit, admitted bool, err error)
	SetPlan(ctx context.Context, userId uuid.UUID, planType string, now time.Time) (*entity.ChatLimit, error)
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
}
