// Package errors defines the structured application error used across services
// and handlers, plus mapping from PostgreSQL failures.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "not_found"
	ErrCodeConflict        ErrorCode = "conflict"
	ErrCodeValidation      ErrorCode = "validation"
	ErrCodeForeignKey      ErrorCode = "foreign_key"
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	ErrCodeForbidden       ErrorCode = "forbidden"
	ErrCodeInternal        ErrorCode = "internal"
	ErrCodeTimeout         ErrorCode = "timeout"
	ErrCodeCanceled        ErrorCode = "canceled"
)

// AppError is a categorized error with a user-facing message.
// It unwraps to Cause so errors.Is / errors.As see through it.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input, when known.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func newf(code ErrorCode, format string, args ...any) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: code, Message: msg}
}

// NotFound creates a NotFound error.
func NotFound(message string) *AppError { return newf(ErrCodeNotFound, "%s", message) }

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError { return newf(ErrCodeNotFound, format, args...) }

// Conflict creates a Conflict error.
func Conflict(message string) *AppError { return newf(ErrCodeConflict, "%s", message) }

// Validation creates a Validation error.
func Validation(message string) *AppError { return newf(ErrCodeValidation, "%s", message) }

// Validationf creates a Validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return newf(ErrCodeValidation, format, args...)
}

// ValidationField creates a Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	e := newf(ErrCodeValidation, "%s", message)
	e.Field = field
	return e
}

// Unauthenticated creates an Unauthenticated error.
func Unauthenticated(message string) *AppError { return newf(ErrCodeUnauthenticated, "%s", message) }

// Forbidden creates a Forbidden error.
func Forbidden(message string) *AppError { return newf(ErrCodeForbidden, "%s", message) }

// Internal creates an Internal error.
func Internal(message string) *AppError { return newf(ErrCodeInternal, "%s", message) }

// Wrap wraps err with an AppError, preserving the cause. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode returns the ErrorCode of the first AppError in the chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field of the first AppError in the chain, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return GetCode(err) == ErrCodeNotFound }

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool { return GetCode(err) == ErrCodeConflict }

// IsValidation reports whether err is a Validation error.
func IsValidation(err error) bool { return GetCode(err) == ErrCodeValidation }

// IsForeignKey reports whether err is a ForeignKey error.
func IsForeignKey(err error) bool { return GetCode(err) == ErrCodeForeignKey }

// IsTimeout reports whether err is a Timeout error.
func IsTimeout(err error) bool { return GetCode(err) == ErrCodeTimeout }
