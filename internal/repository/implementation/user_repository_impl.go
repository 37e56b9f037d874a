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

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) Patch(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (int64, error) {
	cols := r.mapper.PatchColumns(patch)
	if len(cols) == 0 {
		return r.Count(ctx, specification.ByID{ID: id})
	}
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(cols)
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return first(ctx, r.db, r.mapper.ToEntity, specs...)
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return find(ctx, r.db, r.mapper.ToEntities, specs...)
}

func (r *UserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return count[model.User](ctx, r.db, specs...)
}
