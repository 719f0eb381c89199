package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/roles"
)

// DashboardHandlers resolves the per-role dashboard surface: landing route,
// navigation, feature tags and capabilities.
type DashboardHandlers struct {
	logger *logging.Service
}

func NewDashboardHandlers(logger *logging.Service) *DashboardHandlers {
	return &DashboardHandlers{logger: logger}
}

// RegisterRoutes registers the dashboard resolution route.
func (h *DashboardHandlers) RegisterRoutes(r *mux.Router) {
	authenticated := guard.Protect(guard.Config{Logger: h.logger})
	r.Handle("/api/dashboard", authenticated(http.HandlerFunc(h.resolve))).Methods("GET")
}

type dashboardResponse struct {
	Route        string             `json:"route"`
	Navigation   []roles.NavItem    `json:"navigation"`
	Features     []string           `json:"features"`
	Capabilities roles.Capabilities `json:"capabilities"`
}

// resolve handles GET /api/dashboard. The guard guarantees a valid role, so
// a route lookup failure here is a server fault, not a client one.
func (h *DashboardHandlers) resolve(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r)
	route, err := roles.DashboardRouteOf(user.Role)
	if err != nil {
		httputil.WriteInternalError(w, r, "no dashboard for role")
		return
	}
	httputil.WriteSuccess(w, dashboardResponse{
		Route:        route,
		Navigation:   roles.NavigationOf(user.Role),
		Features:     roles.DashboardFeaturesOf(user.Role),
		Capabilities: roles.CapabilitiesOf(user.Role),
	})
}
