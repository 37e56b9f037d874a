package implementation

import (
	"context"
	"errors"

	"haley-companion-be/internal/repository/specification"

	"gorm.io/gorm"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// first loads one row of M and converts it, returning nil, nil when no row
// matches.
func first[M any, E any](ctx context.Context, db *gorm.DB, toEntity func(*M) *E, specs ...specification.Specification) (*E, error) {
	var m M
	if err := applySpecifications(db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toEntity(&m), nil
}

func find[M any, E any](ctx context.Context, db *gorm.DB, toEntities func([]*M) []*E, specs ...specification.Specification) ([]*E, error) {
	var models []*M
	if err := applySpecifications(db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func count[M any](ctx context.Context, db *gorm.DB, specs ...specification.Specification) (int64, error) {
	var n int64
	var m M
	if err := applySpecifications(db.WithContext(ctx).Model(&m), specs...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
