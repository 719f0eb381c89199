// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/wildpark/wildpark/pkg/contextkeys"
//   ctx = context.WithValue(ctx, contextkeys.UserKey, user)
//   user := ctx.Value(contextkeys.UserKey).(*auth.User)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the bridged *auth.User for the request
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: route guard, role-scoped handlers
	// Type: *auth.User
	UserKey Key = "bridged_user"

	// AuthErrorKey contains the *auth.AuthError produced when the
	// identity bridge failed for this request
	// Set by: middleware.AuthMiddleware
	// Used by: route guard denial responses (retry affordance)
	// Type: *auth.AuthError
	AuthErrorKey Key = "auth_error"

	// RequestIDKey contains request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: structured logger, error envelopes
	// Type: string
	RequestIDKey Key = "request_id"

	// RequestStartTimeKey contains the request start timestamp
	// Set by: API logging middleware
	// Used by: duration fields in API category log entries
	// Type: time.Time
	RequestStartTimeKey Key = "request_start_time"
)

// Helper functions for type-safe context operations

// WithUser adds the bridged user to the context
func WithUser(ctx context.Context, user interface{}) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// WithAuthError adds a bridge failure to the context
func WithAuthError(ctx context.Context, authErr interface{}) context.Context {
	return context.WithValue(ctx, AuthErrorKey, authErr)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
