package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/roles"
	"github.com/wildpark/wildpark/pkg/store"
)

// UserHandlers serves the admin user-management endpoints.
type UserHandlers struct {
	users       store.Users
	logger      *logging.Service
	development bool
}

func NewUserHandlers(users store.Users, logger *logging.Service, development bool) *UserHandlers {
	return &UserHandlers{users: users, logger: logger, development: development}
}

// RegisterRoutes registers the user management routes. Everything here is
// admin-only.
func (h *UserHandlers) RegisterRoutes(r *mux.Router) {
	admin := guard.Protect(guard.Config{RequiredRole: roles.RoleAdmin, Logger: h.logger})

	r.Handle("/api/users", admin(http.HandlerFunc(h.list))).Methods("GET")
	r.Handle("/api/users", admin(http.HandlerFunc(h.create))).Methods("POST")
	r.Handle("/api/users/{id}", admin(http.HandlerFunc(h.get))).Methods("GET")
	r.Handle("/api/users/{id}", admin(http.HandlerFunc(h.update))).Methods("PUT")
	r.Handle("/api/users/{id}/role", admin(http.HandlerFunc(h.setRole))).Methods("PUT")
	r.Handle("/api/users/{id}", admin(http.HandlerFunc(h.deactivate))).Methods("DELETE")
}

func (h *UserHandlers) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteSuccess(w, users)
}

type createUserRequest struct {
	ExternalID string     `json:"external_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       roles.Role `json:"role"`
}

// create handles POST /api/users. Provisions an account ahead of first
// login; if a role is supplied it is applied after provisioning, so the
// tourist default never leaks into staff accounts.
func (h *UserHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.ExternalID == "" || req.Email == "" {
		httputil.WriteBadRequest(w, r, "external_id and email are required")
		return
	}

	user, err := h.users.Provision(r.Context(), auth.Claims{
		Subject: req.ExternalID,
		Email:   req.Email,
		Name:    req.Name,
	}, roles.RoleTourist)
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}

	if req.Role != "" && req.Role != user.Role {
		role, ok := roles.Parse(string(req.Role))
		if !ok {
			httputil.WriteBadRequest(w, r, "unknown role: "+string(req.Role))
			return
		}
		user, err = h.users.SetRole(r.Context(), user.ID, role)
		if err != nil {
			httputil.WriteAppError(w, r, err, h.development)
			return
		}
	}

	h.audit(r, "user created", user)
	httputil.WriteCreated(w, user)
}

func (h *UserHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), id, req.Name, req.Email)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// setRole handles PUT /api/users/{id}/role, the only operation that changes
// a role after provisioning.
func (h *UserHandlers) setRole(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	var req setRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	role, valid := roles.Parse(req.Role)
	if !valid {
		httputil.WriteBadRequest(w, r, "unknown role: "+req.Role)
		return
	}
	user, err := h.users.SetRole(r.Context(), id, role)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.audit(r, "role changed", user)
	httputil.WriteSuccess(w, user)
}

// deactivate handles DELETE /api/users/{id}. Accounts are soft-disabled,
// never removed.
func (h *UserHandlers) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	if err := h.users.Deactivate(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.logger.Warn(logging.CategoryAuth, "user deactivated", logging.Fields{
		"user_id": id.Hex(),
	})
	httputil.WriteNoContent(w)
}

func (h *UserHandlers) audit(r *http.Request, message string, subject *auth.User) {
	fields := logging.Fields{
		"subject_id":   subject.ID.Hex(),
		"subject_role": subject.Role,
	}
	if actor := middleware.UserFrom(r); actor != nil {
		fields["actor_id"] = actor.ID.Hex()
	}
	h.logger.Info(logging.CategoryAuth, message, fields)
}

func (h *UserHandlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w, r, "user not found")
		return
	}
	httputil.WriteAppError(w, r, err, h.development)
}
