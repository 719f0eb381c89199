package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/roles"
)

// User is the application's own account record, reconciled from the
// identity provider on first successful exchange. Role changes only happen
// through the explicit admin role-change operation; deactivation is soft.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalID  string             `bson:"external_id" json:"external_id"` // provider subject
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name" json:"name"`
	Role        roles.Role         `bson:"role" json:"role"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

// Claims holds the identity asserted by a verified provider token.
type Claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
}
