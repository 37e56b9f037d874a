// Package testutil builds the in-memory fixtures shared by the package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"
	"haley-companion-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Epoch is the instant every fixed test clock starts at.
var Epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.NewSQLiteDB(dsn)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user row directly and returns its id.
func SeedUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()

	u := &model.User{
		Email:     email,
		Role:      string(entity.UserRoleUser),
		CreatedAt: Epoch,
	}
	require.NoError(t, db.Create(u).Error)
	return u.Id
}
