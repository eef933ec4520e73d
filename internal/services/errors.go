package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies application errors so handlers can map them to
// HTTP statuses uniformly.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindDatabase   ErrorKind = "database"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewDatabaseError(err error) *AppError {
	return &AppError{Kind: KindDatabase, Message: "database error", Err: err}
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == KindNotFound
}

func IsValidation(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == KindValidation
}

func IsConflict(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == KindConflict
}

// translateDBError converts gorm/driver errors into the taxonomy.
// Unique-constraint violations surface as Conflict so duplicate
// creates return 409.
func translateDBError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(resource)
	}
	if isUniqueViolation(err) {
		return NewConflictError("%s already exists", resource)
	}
	return NewDatabaseError(err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Postgres reports 23505; sqlite says "UNIQUE constraint failed".
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
