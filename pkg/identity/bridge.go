package identity

import (
	"context"
	"errors"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/roles"
	"github.com/wildpark/wildpark/pkg/store"
)

// Bridge exchanges a provider-issued bearer credential for the internal
// user record, creating one on first sight. It never synthesizes a user on
// failure: every error path returns a structured *auth.AuthError.
type Bridge struct {
	verifier TokenVerifier
	users    store.Users
	logger   *logging.Service
}

// NewBridge wires the bridge to its verifier, user repository and audit log.
func NewBridge(verifier TokenVerifier, users store.Users, logger *logging.Service) *Bridge {
	return &Bridge{verifier: verifier, users: users, logger: logger}
}

// Exchange verifies rawToken and resolves the internal user. New subjects
// are provisioned with the tourist role; the role a client may have
// submitted alongside registration is deliberately ignored — role
// assignment beyond the default happens only through the admin role-change
// operation.
func (b *Bridge) Exchange(ctx context.Context, rawToken string) (*auth.User, *auth.AuthError) {
	claims, err := b.verifier.Verify(ctx, rawToken)
	if err != nil {
		var authErr *auth.AuthError
		if errors.Is(err, ErrRateLimited) {
			authErr = auth.NewRetryableAuthError("identity provider rate limited, try again shortly", err)
		} else {
			authErr = auth.NewAuthError("credential could not be verified", err)
		}
		b.auditFailure(authErr, "")
		return nil, authErr
	}

	user, err := b.users.Provision(ctx, *claims, roles.RoleTourist)
	if err != nil {
		// Datastore faults are transient from the caller's perspective.
		authErr := auth.NewRetryableAuthError("account lookup failed, try again shortly", err)
		b.auditFailure(authErr, claims.Subject)
		return nil, authErr
	}

	if !user.IsActive {
		authErr := auth.NewAuthError("account is deactivated", nil)
		b.auditFailure(authErr, claims.Subject)
		return nil, authErr
	}

	if err := b.users.TouchLogin(ctx, user.ID); err != nil {
		// Login bookkeeping must not fail an otherwise valid exchange.
		b.logger.Warn(logging.CategoryAuth, "last-login update failed", logging.Fields{
			"subject": claims.Subject,
			"error":   err.Error(),
		})
	}

	b.logger.Info(logging.CategoryAuth, "identity bridged", logging.Fields{
		"subject": claims.Subject,
		"user_id": user.ID.Hex(),
		"role":    user.Role,
	})
	return user, nil
}

func (b *Bridge) auditFailure(authErr *auth.AuthError, subject string) {
	fields := logging.Fields{
		"error_id":  authErr.ID,
		"can_retry": authErr.CanRetry,
		"details":   authErr.Details,
	}
	if subject != "" {
		fields["subject"] = subject
	}
	b.logger.Error(logging.CategoryAuth, "identity bridge failed: "+authErr.Message, fields)
}
