package api

import (
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/guard"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/roles"
)

// resourceRoutes wires every park collection to the generic CRUD handlers
// with its guard policy and normalization hooks. Route names mirror the
// public API paths, not the Go type names.
func (s *Server) resourceRoutes() []func(*mux.Router) {
	var (
		anyRole  = guard.Config{}
		admin    = guard.Config{RequiredRole: roles.RoleAdmin}
		guides   = guard.Config{AllowedRoles: []roles.Role{roles.RoleTourGuide, roles.RoleAdmin}}
		wildlife = guard.Config{AllowedRoles: []roles.Role{roles.RoleWildlifeOfficer, roles.RoleAdmin}}
		drivers  = guard.Config{AllowedRoles: []roles.Role{roles.RoleSafariDriver, roles.RoleAdmin}}
	)

	tours := Resource[park.Tour]{
		Name: "tour",
		Repo: s.opts.Stores.Tours,
		OnCreate: func(doc *park.Tour, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.CreatedBy = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Tour) {
			doc.ID = existing.ID
			doc.CreatedBy = existing.CreatedBy
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Read:  anyRole,
		Write: guides,
	}

	materials := Resource[park.TourMaterial]{
		Name: "tour-materials",
		Repo: s.opts.Stores.TourMaterials,
		OnCreate: func(doc *park.TourMaterial, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.CreatedBy = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
		},
		OnUpdate: func(doc, existing *park.TourMaterial) {
			doc.ID = existing.ID
			doc.CreatedBy = existing.CreatedBy
			doc.CreatedAt = existing.CreatedAt
		},
		Read:  anyRole,
		Write: guides,
	}

	activities := Resource[park.Activity]{
		Name: "activities",
		Repo: s.opts.Stores.Activities,
		OnCreate: func(doc *park.Activity, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.CreatedBy = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Activity) {
			doc.ID = existing.ID
			doc.CreatedBy = existing.CreatedBy
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Read:  anyRole,
		Write: wildlife,
	}

	events := Resource[park.Event]{
		Name: "events",
		Repo: s.opts.Stores.Events,
		OnCreate: func(doc *park.Event, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.CreatedBy = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Event) {
			doc.ID = existing.ID
			doc.CreatedBy = existing.CreatedBy
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Read:  anyRole,
		Write: guides,
	}

	registrations := Resource[park.EventRegistration]{
		Name: "eventRegistrations",
		Repo: s.opts.Stores.EventRegistrations,
		OnCreate: func(doc *park.EventRegistration, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
		},
		OnUpdate: func(doc, existing *park.EventRegistration) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.CreatedAt = existing.CreatedAt
		},
		Read:  anyRole,
		Write: anyRole,
	}

	donations := Resource[park.Donation]{
		Name: "donations",
		Repo: s.opts.Stores.Donations,
		OnCreate: func(doc *park.Donation, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.Status = park.StatusPending
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Donation) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.Status = existing.Status
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Status: func(doc *park.Donation) *park.Status { return &doc.Status },
		Read:   anyRole,
		Write:  anyRole,
		Review: admin,
	}

	fuelClaims := Resource[park.FuelClaim]{
		Name: "fuel-claims",
		Repo: s.opts.Stores.FuelClaims,
		OnCreate: func(doc *park.FuelClaim, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.DriverID = actorID(actor)
			doc.Status = park.StatusPending
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.FuelClaim) {
			doc.ID = existing.ID
			doc.DriverID = existing.DriverID
			doc.Status = existing.Status
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Status: func(doc *park.FuelClaim) *park.Status { return &doc.Status },
		Read:   drivers,
		Write:  drivers,
		Review: admin,
	}

	applications := Resource[park.Application]{
		Name: "applications",
		Repo: s.opts.Stores.Applications,
		OnCreate: func(doc *park.Application, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.Status = park.StatusPending
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Application) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.Status = existing.Status
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Status: func(doc *park.Application) *park.Status { return &doc.Status },
		Read:   anyRole,
		Write:  anyRole,
		Review: admin,
	}

	complaints := Resource[park.Complaint]{
		Name: "complaints",
		Repo: s.opts.Stores.Complaints,
		OnCreate: func(doc *park.Complaint, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.Resolved = false
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Complaint) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Read:  guard.Config{AllowedRoles: []roles.Role{roles.RoleCallOperator, roles.RoleAdmin}},
		Write: anyRole,
	}

	feedbacks := Resource[park.Feedback]{
		Name: "feedbacks",
		Repo: s.opts.Stores.Feedbacks,
		OnCreate: func(doc *park.Feedback, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.CreatedAt = time.Now().UTC()
		},
		OnUpdate: func(doc, existing *park.Feedback) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.CreatedAt = existing.CreatedAt
		},
		Read:  anyRole,
		Write: anyRole,
	}

	bookings := Resource[park.Booking]{
		Name: "bookings",
		Repo: s.opts.Stores.Bookings,
		OnCreate: func(doc *park.Booking, actor *auth.User) {
			doc.ID = primitive.NewObjectID()
			doc.UserID = actorID(actor)
			doc.Status = park.StatusPending
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		},
		OnUpdate: func(doc, existing *park.Booking) {
			doc.ID = existing.ID
			doc.UserID = existing.UserID
			doc.Status = existing.Status
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = time.Now().UTC()
		},
		Status: func(doc *park.Booking) *park.Status { return &doc.Status },
		Read:   anyRole,
		Write:  anyRole,
		Review: guides,
	}

	return []func(*mux.Router){
		NewResourceHandlers(tours, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(materials, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(activities, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(events, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(registrations, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(donations, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(fuelClaims, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(applications, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(complaints, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(feedbacks, s.opts.Logger, s.opts.Development).RegisterRoutes,
		NewResourceHandlers(bookings, s.opts.Logger, s.opts.Development).RegisterRoutes,
	}
}

func actorID(actor *auth.User) primitive.ObjectID {
	if actor == nil {
		return primitive.NilObjectID
	}
	return actor.ID
}
