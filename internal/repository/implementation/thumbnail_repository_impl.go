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

type ThumbnailRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ThumbnailMapper
}

func NewThumbnailRepository(db *gorm.DB) contract.ThumbnailRepository {
	return &ThumbnailRepositoryImpl{
		db:     db,
		mapper: mapper.NewThumbnailMapper(),
	}
}

func (r *ThumbnailRepositoryImpl) Create(ctx context.Context, thumbnail *entity.Thumbnail) error {
	m := r.mapper.ToModel(thumbnail)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thumbnail = *r.mapper.ToEntity(m)
	return nil
}

func (r *ThumbnailRepositoryImpl) PatchOwned(ctx context.Context, id, userId uuid.UUID, patch entity.ThumbnailPatch) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Thumbnail{}).Where("uuid = ? AND user_id = ?", id, userId)

	cols := r.mapper.PatchColumns(patch)
	if len(cols) == 0 {
		var count int64
		err := query.Count(&count).Error
		return count, err
	}

	result := query.Updates(cols)
	return result.RowsAffected, result.Error
}

func (r *ThumbnailRepositoryImpl) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Thumbnail{}).
		Where("uuid = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return result.RowsAffected, result.Error
}

func (r *ThumbnailRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.Thumbnail{}).Error
}

func (r *ThumbnailRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thumbnail, error) {
	return first(ctx, r.db, r.mapper.ToEntity, specs...)
}

func (r *ThumbnailRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Thumbnail, error) {
	return find(ctx, r.db, r.mapper.ToEntities, specs...)
}
