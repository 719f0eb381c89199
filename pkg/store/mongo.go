// Package store implements the document datastore access layer on MongoDB.
// Repository interfaces keep handlers and the identity bridge testable
// without a running datastore.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("store: document not found")

// Collection names used across the service.
const (
	CollectionUsers              = "users"
	CollectionTours              = "tours"
	CollectionTourMaterials      = "tour_materials"
	CollectionActivities         = "activities"
	CollectionEvents             = "events"
	CollectionEventRegistrations = "event_registrations"
	CollectionDonations          = "donations"
	CollectionFuelClaims         = "fuel_claims"
	CollectionApplications       = "applications"
	CollectionEmergencyForms     = "emergency_forms"
	CollectionEmergencyReports   = "emergency_reports"
	CollectionComplaints         = "complaints"
	CollectionFeedbacks          = "feedbacks"
	CollectionBookings           = "bookings"
)

// Connect opens a client, verifies the connection and returns the database
// handle. The caller owns client shutdown via Disconnect.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to datastore: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("ping datastore: %w", err)
	}
	return client, client.Database(database), nil
}
