package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
)

// CodeExchanger completes the provider authorization-code flow for clients
// that cannot hold the client secret.
type CodeExchanger interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// AuthHandlers serves the identity-bridge endpoints.
type AuthHandlers struct {
	bridge  middleware.BridgeFunc
	limiter *middleware.RateLimiter
	flow    CodeExchanger
	logger  *logging.Service
}

func NewAuthHandlers(bridge middleware.BridgeFunc, limiter *middleware.RateLimiter, flow CodeExchanger, logger *logging.Service) *AuthHandlers {
	return &AuthHandlers{bridge: bridge, limiter: limiter, flow: flow, logger: logger}
}

// RegisterRoutes registers the auth API routes. The credential-accepting
// endpoints sit behind the redis rate limiter when one is configured.
func (h *AuthHandlers) RegisterRoutes(r *mux.Router) {
	limited := func(fn http.HandlerFunc) http.Handler {
		if h.limiter != nil {
			return h.limiter.Handler(fn)
		}
		return fn
	}
	r.Handle("/api/auth/login-register", limited(h.loginRegister)).Methods("POST")
	r.HandleFunc("/api/auth/me", h.me).Methods("GET")
	r.HandleFunc("/api/auth/logout", h.logout).Methods("POST")
	if h.flow != nil {
		r.HandleFunc("/api/auth/authorize-url", h.authorizeURL).Methods("GET")
		r.Handle("/api/auth/callback", limited(h.callback)).Methods("POST")
	}
}

type loginResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

// loginRegister handles POST /api/auth/login-register. The bearer credential
// is exchanged for an internal user, creating one on first sight. A
// retryable bridge failure surfaces as 429 so callers can retry; terminal
// failures are 401.
func (h *AuthHandlers) loginRegister(w http.ResponseWriter, r *http.Request) {
	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.WriteUnauthorized(w, r, "missing bearer credential")
		return
	}

	user, authErr := h.bridge(r.Context(), token)
	if authErr != nil {
		status := http.StatusUnauthorized
		if authErr.CanRetry {
			status = http.StatusTooManyRequests
		}
		httputil.WriteJSON(w, status, authErr)
		return
	}

	httputil.WriteSuccess(w, loginResponse{User: user, Token: token})
}

// authorizeURL handles GET /api/auth/authorize-url. Returns the provider
// consent URL for the supplied anti-forgery state.
func (h *AuthHandlers) authorizeURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		httputil.WriteBadRequest(w, r, "state query parameter is required")
		return
	}
	httputil.WriteSuccess(w, map[string]string{"url": h.flow.AuthURL(state)})
}

type callbackRequest struct {
	Code string `json:"code"`
}

// callback handles POST /api/auth/callback. Exchanges an authorization code
// for the provider's ID token, then runs the standard bridge path.
func (h *AuthHandlers) callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Code == "" {
		httputil.WriteBadRequest(w, r, "code is required")
		return
	}

	rawToken, err := h.flow.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		h.logger.Warn(logging.CategoryAuth, "code exchange failed", logging.Fields{
			"request_id": contextkeys.GetRequestID(r.Context()),
			"error":      err.Error(),
		})
		httputil.WriteUnauthorized(w, r, "authorization code rejected")
		return
	}

	user, authErr := h.bridge(r.Context(), rawToken)
	if authErr != nil {
		status := http.StatusUnauthorized
		if authErr.CanRetry {
			status = http.StatusTooManyRequests
		}
		httputil.WriteJSON(w, status, authErr)
		return
	}
	httputil.WriteSuccess(w, loginResponse{User: user, Token: rawToken})
}

// me handles GET /api/auth/me. Used on page load to rebuild the client
// session from an existing credential.
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)
	if user == nil {
		if authErr := middleware.AuthErrorFrom(r); authErr != nil && authErr.CanRetry {
			httputil.WriteJSON(w, http.StatusTooManyRequests, authErr)
			return
		}
		httputil.WriteUnauthorized(w, r, "not authenticated")
		return
	}
	httputil.WriteSuccess(w, user)
}

// logout handles POST /api/auth/logout. Credentials are provider-issued and
// stateless on this side; the call exists for the audit trail.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	fields := logging.Fields{"request_id": contextkeys.GetRequestID(r.Context())}
	if user := middleware.UserFrom(r); user != nil {
		fields["user_id"] = user.ID.Hex()
		fields["role"] = user.Role
	}
	h.logger.Info(logging.CategoryAuth, "logout", fields)
	httputil.WriteNoContent(w)
}
