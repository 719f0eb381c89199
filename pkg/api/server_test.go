package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/roles"
	"github.com/wildpark/wildpark/pkg/store"
)

// harness wires a full server over in-memory stores with a scripted bridge.
// Tokens map one-to-one onto seeded users; unknown tokens fail terminally.
type harness struct {
	server *Server
	users  *store.MemoryUsers
	tokens map[string]string // token -> external id
	stores Stores
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, err := logging.New(logging.Config{Dir: t.TempDir(), ConsoleLevel: logrus.PanicLevel})
	require.NoError(t, err)
	t.Cleanup(logger.Close)

	h := &harness{
		users:  store.NewMemoryUsers(),
		tokens: map[string]string{},
	}
	h.stores = Stores{
		Users:              h.users,
		Tours:              store.NewMemoryDocuments[park.Tour](),
		TourMaterials:      store.NewMemoryDocuments[park.TourMaterial](),
		Activities:         store.NewMemoryDocuments[park.Activity](),
		Events:             store.NewMemoryDocuments[park.Event](),
		EventRegistrations: store.NewMemoryDocuments[park.EventRegistration](),
		Donations:          store.NewMemoryDocuments[park.Donation](),
		FuelClaims:         store.NewMemoryDocuments[park.FuelClaim](),
		Applications:       store.NewMemoryDocuments[park.Application](),
		EmergencyForms:     store.NewMemoryDocuments[park.EmergencyForm](),
		EmergencyReports:   store.NewMemoryDocuments[park.EmergencyReport](),
		Complaints:         store.NewMemoryDocuments[park.Complaint](),
		Feedbacks:          store.NewMemoryDocuments[park.Feedback](),
		Bookings:           store.NewMemoryDocuments[park.Booking](),
	}

	h.server = NewServer(Options{
		Logger: logger,
		Bridge: h.bridge,
		Stores: h.stores,
	})
	return h
}

func (h *harness) bridge(ctx context.Context, rawToken string) (*auth.User, *auth.AuthError) {
	externalID, ok := h.tokens[rawToken]
	if !ok {
		return nil, auth.NewAuthError("credential rejected", nil)
	}
	user, err := h.users.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, auth.NewRetryableAuthError("account lookup failed", err)
	}
	return user, nil
}

// seed provisions a user with the given role and returns a bearer token
// recognized by the bridge.
func (h *harness) seed(t *testing.T, role roles.Role) string {
	t.Helper()
	externalID := "sub-" + string(role)
	user, err := h.users.Provision(context.Background(), auth.Claims{
		Subject: externalID,
		Email:   string(role) + "@wildpark.example",
		Name:    string(role),
	}, roles.RoleTourist)
	require.NoError(t, err)
	if role != roles.RoleTourist {
		_, err = h.users.SetRole(context.Background(), user.ID, role)
		require.NoError(t, err)
	}
	token := "token-" + string(role)
	h.tokens[token] = externalID
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.server.ServeHTTP(rec, req)
	return rec
}

func TestDashboardRequiresLoginThenServesTourist(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var denial guard.DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &denial))
	assert.Equal(t, "You must be logged in to access this page.", denial.Message)

	token := h.seed(t, roles.RoleTourist)
	rec = h.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash dashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "/dashboard", dash.Route)
	assert.True(t, dash.Capabilities.CanMakeBookings)
	assert.False(t, dash.Capabilities.CanAccessAdmin)
}

func TestLoginRegister(t *testing.T) {
	h := newHarness(t)
	token := h.seed(t, roles.RoleTourist)

	rec := h.do(t, http.MethodPost, "/api/auth/login-register", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/login-register", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, roles.RoleTourist, resp.User.Role)
	assert.Equal(t, token, resp.Token)

	rec = h.do(t, http.MethodPost, "/api/auth/login-register", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRegisterRetryableFailureIs429(t *testing.T) {
	h := newHarness(t)
	token := h.seed(t, roles.RoleTourist)
	// Token resolves but the account lookup behind it fails transiently.
	h.tokens[token] = "sub-missing"

	rec := h.do(t, http.MethodPost, "/api/auth/login-register", token, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var authErr auth.AuthError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authErr))
	assert.True(t, authErr.CanRetry)
}

func TestAuthMe(t *testing.T) {
	h := newHarness(t)
	token := h.seed(t, roles.RoleVet)

	rec := h.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, roles.RoleVet, user.Role)
}

func TestBookingLifecycle(t *testing.T) {
	h := newHarness(t)
	tourist := h.seed(t, roles.RoleTourist)
	admin := h.seed(t, roles.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/bookings", tourist, map[string]interface{}{
		"guests": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking park.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.False(t, booking.ID.IsZero())
	assert.Equal(t, park.StatusPending, booking.Status)

	// Review is for guides and admins, not the booking tourist.
	rec = h.do(t, http.MethodPut, "/api/bookings/"+booking.ID.Hex()+"/approve", tourist, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/bookings/"+booking.ID.Hex()+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, park.StatusApproved, booking.Status)
}

func TestTourWriteGuard(t *testing.T) {
	h := newHarness(t)
	tourist := h.seed(t, roles.RoleTourist)
	guide := h.seed(t, roles.RoleTourGuide)

	body := map[string]interface{}{"title": "Night safari", "price": 120.0}

	rec := h.do(t, http.MethodPost, "/api/tour", tourist, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/tour", guide, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tour park.Tour
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tour))
	assert.Equal(t, "Night safari", tour.Title)

	// Tourist can still read the catalogue.
	rec = h.do(t, http.MethodGet, "/api/tour", tourist, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tours []park.Tour
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tours))
	assert.Len(t, tours, 1)
}

func TestResourceNotFoundAndBadID(t *testing.T) {
	h := newHarness(t)
	token := h.seed(t, roles.RoleTourist)

	rec := h.do(t, http.MethodGet, "/api/tour/not-a-hex-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/tour/64a0c0ffee0ddba11deadbee", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserAdministration(t *testing.T) {
	h := newHarness(t)
	tourist := h.seed(t, roles.RoleTourist)
	admin := h.seed(t, roles.RoleAdmin)

	rec := h.do(t, http.MethodGet, "/api/users", tourist, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)

	rec = h.do(t, http.MethodPost, "/api/users", admin, map[string]string{
		"external_id": "sub-new-vet",
		"email":       "vet2@wildpark.example",
		"name":        "Second Vet",
		"role":        "vet",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, roles.RoleVet, created.Role)

	rec = h.do(t, http.MethodPut, "/api/users/"+created.ID.Hex()+"/role", admin, map[string]string{
		"role": "WildlifeOfficer",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, roles.RoleWildlifeOfficer, created.Role)

	rec = h.do(t, http.MethodPut, "/api/users/"+created.ID.Hex()+"/role", admin, map[string]string{
		"role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/users/"+created.ID.Hex(), admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	fetched, err := h.users.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive, "deactivation is soft")
}

func TestEmergencyFlow(t *testing.T) {
	h := newHarness(t)
	operator := h.seed(t, roles.RoleCallOperator)
	officer := h.seed(t, roles.RoleEmergencyOfficer)
	vet := h.seed(t, roles.RoleVet)

	rec := h.do(t, http.MethodPost, "/api/emergency-forms", vet, map[string]string{
		"location": "gate 3", "description": "injured zebra",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/emergency-forms", operator, map[string]string{
		"caller_name": "Ranger Abel", "location": "gate 3", "description": "injured zebra",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var form park.EmergencyForm
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Equal(t, park.EmergencyReported, form.Status)

	rec = h.do(t, http.MethodPut, "/api/emergency-forms/"+form.ID.Hex()+"/status", officer, map[string]string{
		"status": "dispatched",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Equal(t, park.EmergencyDispatched, form.Status)

	rec = h.do(t, http.MethodGet, "/api/emergencies", operator, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var open []park.EmergencyForm
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	require.Len(t, open, 1)

	rec = h.do(t, http.MethodPut, "/api/emergency-forms/"+form.ID.Hex()+"/status", officer, map[string]string{
		"status": "resolved",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/emergencies", operator, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	assert.Empty(t, open, "resolved incidents leave the board")

	rec = h.do(t, http.MethodPost, "/api/emergency-reports", officer, map[string]interface{}{
		"form_id": form.ID, "summary": "zebra treated on site",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestClientLogIngestion(t *testing.T) {
	h := newHarness(t)
	token := h.seed(t, roles.RoleTourist)

	rec := h.do(t, http.MethodPost, "/api/logs/errors", token, map[string]string{
		"message": "dashboard widget crashed",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/logs/errors", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/logs/dashboard-access", token, map[string]string{
		"route": "/dashboard",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
