// Package apperror holds the error taxonomy shared by repositories, services
// and the HTTP error handler.
package apperror

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("service unavailable")
)

// Error carries a user-facing message next to one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NotFound(resource string) error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func DuplicateKey(message string) error {
	return &Error{Kind: ErrDuplicateKey, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

func Unavailable(message string) error {
	return &Error{Kind: ErrUnavailable, Message: message}
}

// Storage wraps an unexpected persistence failure. Already classified errors
// pass through untouched.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: ErrStorage, Message: op, Cause: err}
}

// Translate maps driver level failures onto the taxonomy. GORM's
// TranslateError covers both drivers; the pgconn codes catch statements that
// bypass the dialector translation (raw Exec).
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: ErrDuplicateKey, Message: op + ": already exists", Cause: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &Error{Kind: ErrNotFound, Message: op + ": referenced record not found", Cause: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &Error{Kind: ErrDuplicateKey, Message: op + ": already exists", Cause: err}
		case "23503":
			return &Error{Kind: ErrNotFound, Message: op + ": referenced record not found", Cause: err}
		}
	}
	return Storage(op, err)
}

// Message returns the user-facing part of err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
