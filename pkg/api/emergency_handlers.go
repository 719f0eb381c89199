package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/roles"
	"github.com/wildpark/wildpark/pkg/store"
)

// EmergencyHandlers serves the emergency call flow: call operators file
// forms, emergency officers work them and file reports.
type EmergencyHandlers struct {
	forms       store.Documents[park.EmergencyForm]
	reports     store.Documents[park.EmergencyReport]
	logger      *logging.Service
	development bool
}

func NewEmergencyHandlers(forms store.Documents[park.EmergencyForm], reports store.Documents[park.EmergencyReport], logger *logging.Service, development bool) *EmergencyHandlers {
	return &EmergencyHandlers{forms: forms, reports: reports, logger: logger, development: development}
}

// RegisterRoutes registers the emergency routes.
func (h *EmergencyHandlers) RegisterRoutes(r *mux.Router) {
	responders := guard.Protect(guard.Config{
		AllowedRoles: []roles.Role{roles.RoleCallOperator, roles.RoleEmergencyOfficer, roles.RoleAdmin},
		Logger:       h.logger,
	})
	operators := guard.Protect(guard.Config{
		AllowedRoles: []roles.Role{roles.RoleCallOperator, roles.RoleAdmin},
		Logger:       h.logger,
	})
	officers := guard.Protect(guard.Config{
		AllowedRoles: []roles.Role{roles.RoleEmergencyOfficer, roles.RoleAdmin},
		Logger:       h.logger,
	})

	// Open-incident board shared by the whole response team.
	r.Handle("/api/emergencies", responders(http.HandlerFunc(h.listOpen))).Methods("GET")

	r.Handle("/api/emergency-forms", responders(http.HandlerFunc(h.listForms))).Methods("GET")
	r.Handle("/api/emergency-forms", operators(http.HandlerFunc(h.createForm))).Methods("POST")
	r.Handle("/api/emergency-forms/{id}", responders(http.HandlerFunc(h.getForm))).Methods("GET")
	r.Handle("/api/emergency-forms/{id}/status", officers(http.HandlerFunc(h.updateStatus))).Methods("PUT")

	r.Handle("/api/emergency-reports", officers(http.HandlerFunc(h.listReports))).Methods("GET")
	r.Handle("/api/emergency-reports", officers(http.HandlerFunc(h.createReport))).Methods("POST")
	r.Handle("/api/emergency-reports/{id}", officers(http.HandlerFunc(h.getReport))).Methods("GET")
}

// listOpen handles GET /api/emergencies, the unresolved incidents.
func (h *EmergencyHandlers) listOpen(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.Find(r.Context(), bson.M{"status": bson.M{"$ne": park.EmergencyResolved}})
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteSuccess(w, forms)
}

func (h *EmergencyHandlers) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.Find(r.Context(), nil)
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteSuccess(w, forms)
}

func (h *EmergencyHandlers) createForm(w http.ResponseWriter, r *http.Request) {
	var form park.EmergencyForm
	if !httputil.ParseJSONOrError(w, r, &form) {
		return
	}
	if form.Location == "" || form.Description == "" {
		httputil.WriteBadRequest(w, r, "location and description are required")
		return
	}

	form.ID = primitive.NewObjectID()
	form.Status = park.EmergencyReported
	form.FiledBy = actorID(middleware.UserFrom(r))
	form.AssignedTo = primitive.NilObjectID
	form.CreatedAt = time.Now().UTC()
	form.UpdatedAt = form.CreatedAt

	if _, err := h.forms.Insert(r.Context(), &form); err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}

	h.logger.Warn(logging.CategorySystem, "emergency reported", logging.Fields{
		"form_id":  form.ID.Hex(),
		"location": form.Location,
	})
	httputil.WriteCreated(w, form)
}

func (h *EmergencyHandlers) getForm(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	form, err := h.forms.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, form)
}

type emergencyStatusRequest struct {
	Status     park.EmergencyStatus `json:"status"`
	AssignedTo string               `json:"assigned_to,omitempty"`
}

// updateStatus handles PUT /api/emergency-forms/{id}/status. Dispatching
// may also assign the responding officer.
func (h *EmergencyHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	var req emergencyStatusRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	switch req.Status {
	case park.EmergencyReported, park.EmergencyDispatched, park.EmergencyResolved:
	default:
		httputil.WriteBadRequest(w, r, "unknown emergency status: "+string(req.Status))
		return
	}

	form, err := h.forms.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	form.Status = req.Status
	form.UpdatedAt = time.Now().UTC()
	if req.AssignedTo != "" {
		officerID, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			httputil.WriteBadRequest(w, r, "invalid assigned_to id")
			return
		}
		form.AssignedTo = officerID
	}

	if err := h.forms.Replace(r.Context(), id, form); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, form)
}

func (h *EmergencyHandlers) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.Find(r.Context(), nil)
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteSuccess(w, reports)
}

func (h *EmergencyHandlers) createReport(w http.ResponseWriter, r *http.Request) {
	var report park.EmergencyReport
	if !httputil.ParseJSONOrError(w, r, &report) {
		return
	}
	if report.FormID.IsZero() {
		httputil.WriteBadRequest(w, r, "form_id is required")
		return
	}
	if _, err := h.forms.FindByID(r.Context(), report.FormID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteBadRequest(w, r, "form_id does not reference an emergency form")
			return
		}
		httputil.WriteAppError(w, r, err, h.development)
		return
	}

	report.ID = primitive.NewObjectID()
	report.OfficerID = actorID(middleware.UserFrom(r))
	report.CreatedAt = time.Now().UTC()

	if _, err := h.reports.Insert(r.Context(), &report); err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteCreated(w, report)
}

func (h *EmergencyHandlers) getReport(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	report, err := h.reports.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

func (h *EmergencyHandlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w, r, "emergency record not found")
		return
	}
	httputil.WriteAppError(w, r, err, h.development)
}
