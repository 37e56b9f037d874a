package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{name: "gorm duplicate", err: gorm.ErrDuplicatedKey, kind: ErrDuplicateKey},
		{name: "gorm foreign key", err: gorm.ErrForeignKeyViolated, kind: ErrNotFound},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, kind: ErrDuplicateKey},
		{name: "pg fk violation", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"}), kind: ErrNotFound},
		{name: "anything else", err: errors.New("connection reset"), kind: ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate("create user", tt.err)
			assert.ErrorIs(t, got, tt.kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, Translate("noop", nil))
}

func TestStorageKeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("session")
	assert.Same(t, nf, Storage("update session", nf))
	assert.ErrorIs(t, Storage("update session", nf), ErrNotFound)
	assert.Equal(t, "session not found", Message(nf))
}
