package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByUUID struct {
	UUID uuid.UUID
}

func (s ByUUID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("uuid = ?", s.UUID)
}

type PublicOnly struct{}

func (s PublicOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_public = ?", true)
}
