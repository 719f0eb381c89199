// Package guard gates protected routes on the bridged user's role. Denials
// always explain why (required role vs actual role); how a denial renders
// is an explicit configuration choice, never inferred.
package guard

import (
	"net/http"

	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/roles"
)

// UnauthenticatedMessage is shown when no provider session reached us.
const UnauthenticatedMessage = "You must be logged in to access this page."

// DenialMode selects how a role denial is rendered.
type DenialMode int

const (
	// DenyExplain responds 403 with the required and actual roles.
	DenyExplain DenialMode = iota
	// DenyFallback delegates to the configured fallback handler.
	DenyFallback
	// DenyEmpty responds 403 with no body.
	DenyEmpty
)

// Config constrains a protected route. When both RequiredRole and
// AllowedRoles are supplied, both checks must pass.
type Config struct {
	RequiredRole roles.Role
	AllowedRoles []roles.Role
	Mode         DenialMode
	Fallback     http.Handler
	Logger       *logging.Service
}

// DenialResponse is the body of an explained denial.
type DenialResponse struct {
	Message      string       `json:"message"`
	RequiredRole roles.Role   `json:"required_role,omitempty"`
	AllowedRoles []roles.Role `json:"allowed_roles,omitempty"`
	ActualRole   roles.Role   `json:"actual_role,omitempty"`
	CanRetry     bool         `json:"can_retry,omitempty"`
}

// Protect builds middleware enforcing cfg on its inner handler.
func Protect(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := middleware.UserFrom(r)
			if user == nil {
				authErr := middleware.AuthErrorFrom(r)
				resp := DenialResponse{Message: UnauthenticatedMessage}
				if authErr != nil && authErr.CanRetry {
					resp.CanRetry = true
				}
				cfg.audit(r, "denied unauthenticated")
				httputil.WriteJSON(w, http.StatusUnauthorized, resp)
				return
			}

			if cfg.allows(user.Role) {
				cfg.audit(r, "allowed")
				next.ServeHTTP(w, r)
				return
			}

			cfg.audit(r, "denied role")
			switch cfg.Mode {
			case DenyFallback:
				if cfg.Fallback != nil {
					cfg.Fallback.ServeHTTP(w, r)
					return
				}
				// No fallback configured; fall through to the explained
				// denial rather than silently allowing.
				fallthrough
			case DenyExplain:
				httputil.WriteJSON(w, http.StatusForbidden, DenialResponse{
					Message:      "You do not have permission to access this page.",
					RequiredRole: cfg.RequiredRole,
					AllowedRoles: cfg.AllowedRoles,
					ActualRole:   user.Role,
				})
			case DenyEmpty:
				w.WriteHeader(http.StatusForbidden)
			}
		})
	}
}

// allows applies the AND of the configured constraints. An unknown role can
// never pass: it fails any RequiredRole comparison and is never a member of
// a declared AllowedRoles set; with no constraints configured a valid role
// is required at minimum.
func (cfg Config) allows(role roles.Role) bool {
	if cfg.RequiredRole == roles.RoleUnknown && len(cfg.AllowedRoles) == 0 {
		return role.Valid()
	}
	if cfg.RequiredRole != roles.RoleUnknown && role != cfg.RequiredRole {
		return false
	}
	if len(cfg.AllowedRoles) > 0 && !contains(cfg.AllowedRoles, role) {
		return false
	}
	return true
}

func contains(set []roles.Role, role roles.Role) bool {
	for _, member := range set {
		if member == role {
			return true
		}
	}
	return false
}

func (cfg Config) audit(r *http.Request, outcome string) {
	if cfg.Logger == nil {
		return
	}
	fields := logging.Fields{
		"path":    r.URL.Path,
		"outcome": outcome,
	}
	if cfg.RequiredRole != roles.RoleUnknown {
		fields["required_role"] = cfg.RequiredRole
	}
	if len(cfg.AllowedRoles) > 0 {
		fields["allowed_roles"] = cfg.AllowedRoles
	}
	if user := middleware.UserFrom(r); user != nil {
		fields["user_id"] = user.ID.Hex()
		fields["role"] = user.Role
	}
	if outcome == "allowed" {
		cfg.Logger.Info(logging.CategoryDashboard, "dashboard access", fields)
	} else {
		cfg.Logger.Warn(logging.CategoryDashboard, "dashboard access denied", fields)
	}
}
