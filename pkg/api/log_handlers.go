package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wildpark/wildpark/pkg/contextkeys"
	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
)

// LogHandlers ingests client-side audit events into the structured logger.
type LogHandlers struct {
	logger *logging.Service
}

func NewLogHandlers(logger *logging.Service) *LogHandlers {
	return &LogHandlers{logger: logger}
}

// RegisterRoutes registers the log ingestion routes.
func (h *LogHandlers) RegisterRoutes(r *mux.Router) {
	authenticated := guard.Protect(guard.Config{Logger: h.logger})
	r.Handle("/api/logs/errors", authenticated(http.HandlerFunc(h.clientError))).Methods("POST")
	r.Handle("/api/logs/dashboard-access", authenticated(http.HandlerFunc(h.dashboardAccess))).Methods("POST")
}

type clientErrorRequest struct {
	Message string            `json:"message"`
	Stack   string            `json:"stack,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

// clientError handles POST /api/logs/errors.
func (h *LogHandlers) clientError(w http.ResponseWriter, r *http.Request) {
	var req clientErrorRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Message == "" {
		httputil.WriteBadRequest(w, r, "message is required")
		return
	}

	fields := h.commonFields(r)
	if req.Stack != "" {
		fields["stack"] = req.Stack
	}
	for k, v := range req.Context {
		fields["client_"+k] = v
	}
	h.logger.Error(logging.CategorySystem, req.Message, fields)
	httputil.WriteNoContent(w)
}

type dashboardAccessRequest struct {
	Route   string `json:"route"`
	Outcome string `json:"outcome,omitempty"`
}

// dashboardAccess handles POST /api/logs/dashboard-access.
func (h *LogHandlers) dashboardAccess(w http.ResponseWriter, r *http.Request) {
	var req dashboardAccessRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Route == "" {
		httputil.WriteBadRequest(w, r, "route is required")
		return
	}

	fields := h.commonFields(r)
	fields["route"] = req.Route
	if req.Outcome != "" {
		fields["outcome"] = req.Outcome
	}
	h.logger.Info(logging.CategoryDashboard, "dashboard access", fields)
	httputil.WriteNoContent(w)
}

func (h *LogHandlers) commonFields(r *http.Request) logging.Fields {
	fields := logging.Fields{
		"request_id": contextkeys.GetRequestID(r.Context()),
	}
	if user := middleware.UserFrom(r); user != nil {
		fields["user_id"] = user.ID.Hex()
		fields["role"] = user.Role
	}
	return fields
}
