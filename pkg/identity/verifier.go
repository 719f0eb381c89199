// Package identity implements the bridge between the third-party identity
// provider and the internal user model.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/wildpark/wildpark/pkg/auth"
)

// ErrRateLimited marks a provider response that the caller may retry.
var ErrRateLimited = errors.New("identity provider rate limited")

// TokenVerifier validates a provider-issued bearer credential and extracts
// the identity claims it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.Claims, error)
}

// OIDCVerifier verifies tokens against the provider's published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider configuration from its issuer URL.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover identity provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks signature, issuer, audience and expiry, then extracts the
// claims the bridge maps onto the internal user.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*auth.Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	var claims auth.Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}
	return &claims, nil
}

// isRateLimited detects a 429 surfaced through the provider's key fetch.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
