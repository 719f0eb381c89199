// Package middleware provides the HTTP middleware chain: request IDs,
// identity resolution, request logging, panic recovery, CORS and rate
// limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/httputil"
)

// BridgeFunc matches identity.Bridge.Exchange.
type BridgeFunc func(ctx context.Context, rawToken string) (*auth.User, *auth.AuthError)

// AuthMiddleware resolves the bearer credential on every request through
// the identity bridge and stores the outcome in the request context. It
// never rejects by itself; the route guard decides what a missing or failed
// identity means for a given route.
type AuthMiddleware struct {
	bridge BridgeFunc
}

// NewAuthMiddleware wraps the exchange function.
func NewAuthMiddleware(bridge BridgeFunc) *AuthMiddleware {
	return &AuthMiddleware{bridge: bridge}
}

// Handler resolves identity when a bearer credential is present.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := httputil.BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, authErr := m.bridge(ctx, token)
		if authErr != nil {
			ctx = contextkeys.WithAuthError(ctx, authErr)
		} else {
			ctx = contextkeys.WithUser(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom extracts the bridged user from a request, nil when absent.
func UserFrom(r *http.Request) *auth.User {
	if user, ok := r.Context().Value(contextkeys.UserKey).(*auth.User); ok {
		return user
	}
	return nil
}

// AuthErrorFrom extracts the bridge failure from a request, nil when absent.
func AuthErrorFrom(r *http.Request) *auth.AuthError {
	if authErr, ok := r.Context().Value(contextkeys.AuthErrorKey).(*auth.AuthError); ok {
		return authErr
	}
	return nil
}
