package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

// The error taxonomy route handlers map resource-layer failures into.
// Anything outside the taxonomy classifies as a 500.

// ValidationError indicates a malformed or incomplete request body (400).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UnauthorizedError indicates a missing or unverifiable credential (401).
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string { return e.Reason }

// ForbiddenError indicates a valid credential without the required role (403).
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

// NotFoundError indicates a missing resource (404).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// Classify maps an error through the taxonomy to an HTTP status and a
// client-safe message.
func Classify(err error) (int, string) {
	var (
		validation   *ValidationError
		unauthorized *UnauthorizedError
		forbidden    *ForbiddenError
		notFound     *NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Reason
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, unauthorized.Reason
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Reason
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
