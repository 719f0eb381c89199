package guard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/roles"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("dashboard"))
	})
}

func requestAs(role roles.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	user := &auth.User{ID: primitive.NewObjectID(), Role: role, IsActive: true}
	return req.WithContext(contextkeys.WithUser(req.Context(), user))
}

func serve(t *testing.T, cfg Config, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Protect(cfg)(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestUnauthenticatedGetsLoginMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := serve(t, Config{RequiredRole: roles.RoleTourist}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, UnauthenticatedMessage, resp.Message)
	assert.False(t, resp.CanRetry)
}

func TestUnauthenticatedWithRetryableError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	authErr := auth.NewRetryableAuthError("identity provider rate limited", nil)
	req = req.WithContext(contextkeys.WithAuthError(req.Context(), authErr))

	rec := serve(t, Config{RequiredRole: roles.RoleTourist}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CanRetry, "retry affordance must surface for retryable errors")
}

func TestRequiredRoleMatch(t *testing.T) {
	rec := serve(t, Config{RequiredRole: roles.RoleTourist}, requestAs(roles.RoleTourist))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiredRoleMismatchExplains(t *testing.T) {
	rec := serve(t, Config{RequiredRole: roles.RoleAdmin}, requestAs(roles.RoleVet))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var resp DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, roles.RoleAdmin, resp.RequiredRole)
	assert.Equal(t, roles.RoleVet, resp.ActualRole)
}

func TestAllowedRolesMembership(t *testing.T) {
	cfg := Config{AllowedRoles: []roles.Role{roles.RoleVet, roles.RoleWildlifeOfficer}}

	assert.Equal(t, http.StatusOK, serve(t, cfg, requestAs(roles.RoleVet)).Code)
	assert.Equal(t, http.StatusForbidden, serve(t, cfg, requestAs(roles.RoleTourist)).Code)
}

// When both constraints are supplied, both must pass. An admin satisfies
// RequiredRole=admin but is not in AllowedRoles=[vet], so access is denied.
func TestCombinedConstraintsAreANDed(t *testing.T) {
	cfg := Config{
		RequiredRole: roles.RoleAdmin,
		AllowedRoles: []roles.Role{roles.RoleVet},
	}
	rec := serve(t, cfg, requestAs(roles.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownRoleNeverPasses(t *testing.T) {
	configs := []Config{
		{},
		{RequiredRole: roles.RoleAdmin},
		{AllowedRoles: []roles.Role{roles.RoleAdmin, roles.RoleVet}},
	}
	for _, cfg := range configs {
		rec := serve(t, cfg, requestAs(roles.RoleUnknown))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
}

func TestNoConstraintsStillRequiresValidRole(t *testing.T) {
	rec := serve(t, Config{}, requestAs(roles.RoleTourist))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDenyFallbackMode(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	})
	cfg := Config{RequiredRole: roles.RoleAdmin, Mode: DenyFallback, Fallback: fallback}

	rec := serve(t, cfg, requestAs(roles.RoleTourist))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestDenyFallbackWithoutHandlerExplains(t *testing.T) {
	cfg := Config{RequiredRole: roles.RoleAdmin, Mode: DenyFallback}
	rec := serve(t, cfg, requestAs(roles.RoleTourist))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission")
}

func TestDenyEmptyMode(t *testing.T) {
	cfg := Config{RequiredRole: roles.RoleAdmin, Mode: DenyEmpty}
	rec := serve(t, cfg, requestAs(roles.RoleTourist))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}
