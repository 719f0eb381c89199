// Package park defines the persisted domain records of the park management
// system. They are plain CRUD documents with an owner reference and a status
// enumeration; access rules live in the role policy table, not here.
package park

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle of reviewable records (donations, fuel claims,
// applications, bookings).
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is a declared status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// EmergencyStatus is the lifecycle of emergency forms.
type EmergencyStatus string

const (
	EmergencyReported   EmergencyStatus = "reported"
	EmergencyDispatched EmergencyStatus = "dispatched"
	EmergencyResolved   EmergencyStatus = "resolved"
)

// Tour is a bookable tour offered by the park.
type Tour struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	GuideID     primitive.ObjectID `bson:"guide_id,omitempty" json:"guide_id,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// TourMaterial is supporting material a guide attaches to a tour.
type TourMaterial struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TourID    primitive.ObjectID `bson:"tour_id" json:"tour_id"`
	Title     string             `bson:"title" json:"title"`
	URL       string             `bson:"url" json:"url"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Activity is a wildlife officer's recorded field activity.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Event is a public park event visitors can register for.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at"`
	Capacity    int                `bson:"capacity" json:"capacity"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// EventRegistration ties a visitor to an event.
type EventRegistration struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Donation is a visitor donation pending admin review.
type Donation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount    float64            `bson:"amount" json:"amount"`
	Purpose   string             `bson:"purpose" json:"purpose"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// FuelClaim is a safari driver's fuel reimbursement claim.
type FuelClaim struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverID  primitive.ObjectID `bson:"driver_id" json:"driver_id"`
	Liters    float64            `bson:"liters" json:"liters"`
	Amount    float64            `bson:"amount" json:"amount"`
	TripDate  time.Time          `bson:"trip_date" json:"trip_date"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Application is a staff position application.
type Application struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Position  string             `bson:"position" json:"position"`
	Details   string             `bson:"details" json:"details"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// EmergencyForm is an incident filed by a call operator and worked by an
// emergency officer.
type EmergencyForm struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CallerName  string             `bson:"caller_name" json:"caller_name"`
	CallerPhone string             `bson:"caller_phone" json:"caller_phone"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	Status      EmergencyStatus    `bson:"status" json:"status"`
	FiledBy     primitive.ObjectID `bson:"filed_by" json:"filed_by"`
	AssignedTo  primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// EmergencyReport is an officer's closing report on a handled emergency.
type EmergencyReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID      primitive.ObjectID `bson:"form_id" json:"form_id"`
	OfficerID   primitive.ObjectID `bson:"officer_id" json:"officer_id"`
	Summary     string             `bson:"summary" json:"summary"`
	ActionTaken string             `bson:"action_taken" json:"action_taken"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Complaint is a visitor complaint routed to call operators.
type Complaint struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"body" json:"body"`
	Resolved  bool               `bson:"resolved" json:"resolved"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Feedback is general visitor feedback.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Booking is a visitor's tour booking.
type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TourID    primitive.ObjectID `bson:"tour_id" json:"tour_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date      time.Time          `bson:"date" json:"date"`
	Guests    int                `bson:"guests" json:"guests"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
