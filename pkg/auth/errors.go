package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuthError is the structured failure the identity bridge surfaces instead
// of raw provider or network errors. CanRetry distinguishes transient
// failures (provider rate limit) from terminal ones (malformed token); a
// terminal failure is still surfaced, never downgraded to a guest session.
type AuthError struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	CanRetry  bool      `json:"can_retry"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAuthError builds a terminal AuthError wrapping cause.
func NewAuthError(message string, cause error) *AuthError {
	return newAuthError(message, cause, false)
}

// NewRetryableAuthError builds an AuthError the caller may retry.
func NewRetryableAuthError(message string, cause error) *AuthError {
	return newAuthError(message, cause, true)
}

func newAuthError(message string, cause error, retryable bool) *AuthError {
	e := &AuthError{
		ID:        uuid.NewString(),
		Message:   message,
		CanRetry:  retryable,
		Timestamp: time.Now().UTC(),
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// AsAuthError unwraps err to an *AuthError if one is in the chain.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
