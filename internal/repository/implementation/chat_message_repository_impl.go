package implementation

import (
	"context"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/mapper"
	"haley-companion-be/internal/model"
	"haley-companion-be/internal/repository/contract"
	"haley-companion-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) DeleteOwned(ctx context.Context, id, userId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userId).Delete(&model.Message{})
	return result.RowsAffected, result.Error
}

func (r *MessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.Message{}).Error
}

// DeleteAllByUserId also removes messages that sit in the user's sessions but
// carry no user id of their own (assistant turns).
func (r *MessageRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	owned := r.db.Model(&model.ChatSession{}).Select("id").Where("user_id = ?", userId)
	return r.db.WithContext(ctx).
		Where("user_id = ? OR session_id IN (?)", userId, owned).
		Delete(&model.Message{}).Error
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	return first(ctx, r.db, r.mapper.MessageToEntity, specs...)
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return find(ctx, r.db, r.mapper.MessagesToEntities, specs...)
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return count[model.Message](ctx, r.db, specs...)
}
