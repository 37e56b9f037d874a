package specification

import "gorm.io/gorm"

// ByEmail expects the address already lowercased and trimmed.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}
