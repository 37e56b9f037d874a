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
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m := r.mapper.ChatSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ChatSessionToEntity(m)
	return nil
}

func (r *ChatSessionRepositoryImpl) Rename(ctx context.Context, id, userId uuid.UUID, name string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ? AND user_id = ?", id, userId).
		Update("session_name", name)
	return result.RowsAffected, result.Error
}

func (r *ChatSessionRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *ChatSessionRepositoryImpl) DeleteOwned(ctx context.Context, id, userId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userId).Delete(&model.ChatSession{})
	return result.RowsAffected, result.Error
}

func (r *ChatSessionRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.ChatSession{}).Error
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return first(ctx, r.db, r.mapper.ChatSessionToEntity, specs...)
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return find(ctx, r.db, r.mapper.ChatSessionsToEntities, specs...)
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return count[model.ChatSession](ctx, r.db, specs...)
}
