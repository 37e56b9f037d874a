package model

import "gorm.io/gorm"

// All lists every table in dependency order (owners first).
func All() []interface{} {
	return []interface{}{
		&User{},
		&ChatSession{},
		&Message{},
		&Thumbnail{},
		&ChatLimit{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
