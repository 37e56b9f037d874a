package implementation

import (
	"context"
	"time"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/mapper"
	"haley-companion-be/internal/model"
	"haley-companion-be/internal/repository/contract"
	"haley-companion-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatLimitRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatLimitMapper
}

func NewChatLimitRepository(db *gorm.DB) contract.ChatLimitRepository {
	return &ChatLimitRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatLimitMapper(),
	}
}

func (r *ChatLimitRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.ChatLimit, error) {
	return first(ctx, r.db, r.mapper.ToEntity, specification.UserOwnedBy{UserID: userId})
}

// seed inserts an already-expired free row so the following UPDATE treats a
// first send exactly like a window rollover. Existing rows are left alone.
func (r *ChatLimitRepositoryImpl) seed(ctx context.Context, userId uuid.UUID, now time.Time) error {
	row := &model.ChatLimit{
		UserId:       userId,
		MessagesSent: 0,
		LimitResetAt: now,
		PlanType:     entity.PlanFree,
		CreatedAt:    now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error
}

func (r *ChatLimitRepositoryImpl) Increment(ctx context.Context, userId uuid.UUID, now time.Time, window time.Duration, cap int) (*entity.ChatLimit, bool, error) {
	if err := r.seed(ctx, userId, now); err != nil {
		return nil, false, err
	}

	next := now.Add(window)
	query := r.db.WithContext(ctx).Model(&model.ChatLimit{}).Where("user_id = ?", userId)
	if cap >= 0 {
		query = query.Where("(limit_reset_at <= ? OR plan_type <> ? OR messages_sent < ?)", now, entity.PlanFree, cap)
	}

	// Both CASE expressions read the pre-update row.
	result := query.Updates(map[string]interface{}{
		"messages_sent":  gorm.Expr("CASE WHEN limit_reset_at <= ? THEN 1 ELSE messages_sent + 1 END", now),
		"limit_reset_at": gorm.Expr("CASE WHEN limit_reset_at <= ? THEN ? ELSE limit_reset_at END", now, next),
	})
	if result.Error != nil {
		return nil, false, result.Error
	}

	record, err := r.FindByUserId(ctx, userId)
	if err != nil {
		return nil, false, err
	}
	return record, result.RowsAffected > 0, nil
}

func (r *ChatLimitRepositoryImpl) SetPlan(ctx context.Context, userId uuid.UUID, planType string, now time.Time) (*entity.ChatLimit, error) {
	row := &model.ChatLimit{
		UserId:       userId,
		LimitResetAt: now,
		PlanType:     planType,
		CreatedAt:    now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan_type"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserId(ctx, userId)
}

func (r *ChatLimitRepositoryImpl) DeleteByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ChatLimit{}).Error
}
