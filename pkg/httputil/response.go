// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wildpark/wildpark/pkg/contextkeys"
)

// ErrorEnvelope is the JSON body returned for every non-2xx response.
type ErrorEnvelope struct {
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"` // populated in development mode only
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created)
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a successful response with no content (204)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteErrorMessage writes the standard error envelope with a message
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	env := ErrorEnvelope{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if r != nil {
		env.RequestID = contextkeys.GetRequestID(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// WriteAppError maps err through the error taxonomy and writes the envelope.
// Unclassified errors become 500s with a generic message so internals never
// leak to clients outside development mode.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error, development bool) {
	status, message := Classify(err)

	env := ErrorEnvelope{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if r != nil {
		env.RequestID = contextkeys.GetRequestID(r.Context())
	}
	if development && err != nil {
		env.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusBadRequest, message)
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusUnauthorized, message)
}

// WriteForbidden writes a forbidden error (403)
func WriteForbidden(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusForbidden, message)
}

// WriteNotFound writes a not found error (404)
func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusNotFound, message)
}

// WriteTooManyRequests writes a rate limit error (429)
func WriteTooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusTooManyRequests, message)
}

// WriteInternalError writes an internal server error (500)
func WriteInternalError(w http.ResponseWriter, r *http.Request, message string) {
	WriteErrorMessage(w, r, http.StatusInternalServerError, message)
}
