package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// ErrUnreadableDocument means no decoding strategy produced text for a
	// file. Fatal for that file only.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrProviderUnavailable is a transport or API-level failure from one AI
	// provider; the orchestrator falls through to the next provider.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderMalformed means a provider answered but the response body did
	// not have the expected shape.
	ErrProviderMalformed = errors.New("provider response malformed")

	// ErrStoreUnavailable means the remote document store rejected or failed
	// both the find and the create path. Fatal for the file's persistence.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrConfigurationMissing marks startup-time configuration gaps, surfaced
	// distinctly from per-file runtime failures.
	ErrConfigurationMissing = errors.New("configuration missing")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
