package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/httputil"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/store"
)

// Resource describes one CRUD collection exposed under /api/<Name>. The
// domain records share a shape (owner, timestamps, optional review status),
// so one handler set covers all of them; the hooks carry the per-record
// differences.
type Resource[T any] struct {
	Name string
	Repo store.Documents[T]

	// OnCreate normalizes a decoded document before insert: assigns the
	// object id, stamps the actor and timestamps, and sets the initial
	// status. Required.
	OnCreate func(doc *T, actor *auth.User)

	// OnUpdate merges a decoded replacement with the stored document so
	// immutable fields (id, owner, created_at) survive the round trip.
	// Required.
	OnUpdate func(doc, existing *T)

	// Status points at the record's review status field. Nil means the
	// record has no approve/reject lifecycle and those routes are not
	// registered.
	Status func(doc *T) *park.Status

	Read   guard.Config
	Write  guard.Config
	Review guard.Config
}

// ResourceHandlers serves the standard verbs for one Resource.
type ResourceHandlers[T any] struct {
	res         Resource[T]
	logger      *logging.Service
	development bool
}

func NewResourceHandlers[T any](res Resource[T], logger *logging.Service, development bool) *ResourceHandlers[T] {
	return &ResourceHandlers[T]{res: res, logger: logger, development: development}
}

// RegisterRoutes registers the CRUD routes for the resource.
func (h *ResourceHandlers[T]) RegisterRoutes(r *mux.Router) {
	base := "/api/" + h.res.Name
	read := h.protect(h.res.Read)
	write := h.protect(h.res.Write)

	r.Handle(base, read(http.HandlerFunc(h.list))).Methods("GET")
	r.Handle(base, write(http.HandlerFunc(h.create))).Methods("POST")
	r.Handle(base+"/{id}", read(http.HandlerFunc(h.get))).Methods("GET")
	r.Handle(base+"/{id}", write(http.HandlerFunc(h.update))).Methods("PUT")
	r.Handle(base+"/{id}", write(http.HandlerFunc(h.remove))).Methods("DELETE")

	if h.res.Status != nil {
		review := h.protect(h.res.Review)
		r.Handle(base+"/{id}/approve", review(h.review(park.StatusApproved))).Methods("PUT")
		r.Handle(base+"/{id}/reject", review(h.review(park.StatusRejected))).Methods("PUT")
	}
}

func (h *ResourceHandlers[T]) protect(cfg guard.Config) func(http.Handler) http.Handler {
	cfg.Logger = h.logger
	return guard.Protect(cfg)
}

func (h *ResourceHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.res.Repo.Find(r.Context(), nil)
	if err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteSuccess(w, docs)
}

func (h *ResourceHandlers[T]) create(w http.ResponseWriter, r *http.Request) {
	var doc T
	if !httputil.ParseJSONOrError(w, r, &doc) {
		return
	}
	h.res.OnCreate(&doc, middleware.UserFrom(r))
	if _, err := h.res.Repo.Insert(r.Context(), &doc); err != nil {
		httputil.WriteAppError(w, r, err, h.development)
		return
	}
	httputil.WriteCreated(w, doc)
}

func (h *ResourceHandlers[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	doc, err := h.res.Repo.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, doc)
}

func (h *ResourceHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	existing, err := h.res.Repo.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	var doc T
	if !httputil.ParseJSONOrError(w, r, &doc) {
		return
	}
	h.res.OnUpdate(&doc, existing)
	if err := h.res.Repo.Replace(r.Context(), id, &doc); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, doc)
}

func (h *ResourceHandlers[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDOrError(w, r)
	if !ok {
		return
	}
	if err := h.res.Repo.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}

// review returns a handler transitioning the record to the given status.
func (h *ResourceHandlers[T]) review(status park.Status) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := objectIDOrError(w, r)
		if !ok {
			return
		}
		doc, err := h.res.Repo.FindByID(r.Context(), id)
		if err != nil {
			h.writeStoreError(w, r, err)
			return
		}
		*h.res.Status(doc) = status
		if err := h.res.Repo.Replace(r.Context(), id, doc); err != nil {
			h.writeStoreError(w, r, err)
			return
		}
		httputil.WriteSuccess(w, doc)
	})
}

func (h *ResourceHandlers[T]) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w, r, h.res.Name+" record not found")
		return
	}
	httputil.WriteAppError(w, r, err, h.development)
}

func objectIDOrError(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httputil.WriteBadRequest(w, r, "invalid id: "+raw)
		return primitive.NilObjectID, false
	}
	return id, true
}
