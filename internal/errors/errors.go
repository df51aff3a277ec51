package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "USER_NOT_AUTHENTICATED"
	ErrCodeConflict     = "VERSION_CONFLICT"

	ErrCodeInsufficientWords    = "INSUFFICIENT_WORDS"
	ErrCodeAlreadyAnswered      = "ALREADY_ANSWERED"
	ErrCodeHintLimitExceeded    = "HINT_LIMIT_EXCEEDED"
	ErrCodeHintCooldownActive   = "HINT_COOLDOWN_ACTIVE"
	ErrCodeTestAlreadyStarted   = "TEST_ALREADY_STARTED"
	ErrCodeTestNotInProgress    = "TEST_NOT_IN_PROGRESS"
	ErrCodeTestAlreadyCompleted = "TEST_ALREADY_COMPLETED"
	ErrCodeTestNotFound         = "TEST_NOT_FOUND"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "HINT_LIMIT_EXCEEDED")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, which lets the sentinel
// kinds below be used with errors.Is regardless of the message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinel kinds. Use errors.Is(err, ErrHintLimitExceeded) to tell them apart.
var (
	ErrInsufficientWords    = &AppError{Code: ErrCodeInsufficientWords, Message: "not enough eligible words for this test", Status: 422}
	ErrAlreadyAnswered      = &AppError{Code: ErrCodeAlreadyAnswered, Message: "word already answered in this test", Status: 409}
	ErrHintLimitExceeded    = &AppError{Code: ErrCodeHintLimitExceeded, Message: "hint limit reached for this word", Status: 429}
	ErrHintCooldownActive   = &AppError{Code: ErrCodeHintCooldownActive, Message: "hint cooldown still active", Status: 429}
	ErrTestAlreadyStarted   = &AppError{Code: ErrCodeTestAlreadyStarted, Message: "test already started", Status: 409}
	ErrTestNotInProgress    = &AppError{Code: ErrCodeTestNotInProgress, Message: "test is not in progress", Status: 409}
	ErrTestAlreadyCompleted = &AppError{Code: ErrCodeTestAlreadyCompleted, Message: "test already completed", Status: 409}
	ErrTestNotFound         = &AppError{Code: ErrCodeTestNotFound, Message: "test not found", Status: 404}
	ErrUserNotAuthenticated = &AppError{Code: ErrCodeUnauthorized, Message: "user not authenticated", Status: 401}
	ErrVersionConflict      = &AppError{Code: ErrCodeConflict, Message: "record was modified concurrently", Status: 409}
)

// Wrap returns a copy of kind with a more specific message.
func Wrap(kind *AppError, format string, args ...any) *AppError {
	return &AppError{
		Code:    kind.Code,
		Message: fmt.Sprintf(format, args...),
		Status:  kind.Status,
	}
}

// CodeOf returns the AppError code found in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR. AppErrors pass through
// unchanged so a domain kind is never hidden behind a 500.
func NewInternalError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}
