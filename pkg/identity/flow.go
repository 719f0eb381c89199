package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// CodeFlow completes the provider's authorization-code flow on behalf of
// clients that cannot hold the client secret. The exchanged ID token feeds
// the same bridge path as a directly presented bearer credential.
type CodeFlow struct {
	oauth *oauth2.Config
}

// NewCodeFlow discovers the provider endpoints from the issuer URL.
func NewCodeFlow(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string) (*CodeFlow, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover identity provider: %w", err)
	}
	return &CodeFlow{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthURL returns the provider consent URL for the given anti-forgery state.
func (f *CodeFlow) AuthURL(state string) string {
	return f.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for the provider's ID token.
func (f *CodeFlow) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("provider response missing id_token")
	}
	return rawIDToken, nil
}
