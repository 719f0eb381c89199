package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/roles"
)

// Users is the user repository consumed by the identity bridge and the admin
// user-management handlers.
type Users interface {
	// Provision returns the user with the given external subject, creating
	// one with the supplied defaults on first sight. Repeated calls for the
	// same subject must return the same user (no duplicate registration).
	Provision(ctx context.Context, claims auth.Claims, defaultRole roles.Role) (*auth.User, error)

	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*auth.User, error)
	List(ctx context.Context) ([]auth.User, error)

	// UpdateProfile edits name and email only; role is untouchable here.
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*auth.User, error)

	// SetRole is the explicit admin-issued role-change operation.
	SetRole(ctx context.Context, id primitive.ObjectID, role roles.Role) (*auth.User, error)

	// Deactivate soft-disables the account; users are never hard-deleted.
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	TouchLogin(ctx context.Context, id primitive.ObjectID) error
}

// MongoUsers implements Users on the users collection.
type MongoUsers struct {
	coll *mongo.Collection
}

// NewMongoUsers returns the mongo-backed user repository and ensures the
// unique index that makes provisioning idempotent.
func NewMongoUsers(ctx context.Context, db *mongo.Database) (*MongoUsers, error) {
	coll := db.Collection(CollectionUsers)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure users index: %w", err)
	}
	return &MongoUsers{coll: coll}, nil
}

// Provision upserts on external_id. SetOnInsert keeps role, active flag and
// created_at from an existing record intact, so a retried exchange can never
// register the user twice or reset an admin-assigned role.
func (s *MongoUsers) Provision(ctx context.Context, claims auth.Claims, defaultRole roles.Role) (*auth.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":      claims.Email,
			"name":       claims.Name,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"external_id": claims.Subject,
			"role":        defaultRole,
			"is_active":   true,
			"created_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user auth.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"external_id": claims.Subject}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return &user, nil
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUsers) FindByExternalID(ctx context.Context, externalID string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"external_id": externalID})
}

func (s *MongoUsers) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var user auth.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUsers) List(ctx context.Context) ([]auth.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []auth.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*auth.User, error) {
	return s.updateOne(ctx, id, bson.M{"name": name, "email": email})
}

func (s *MongoUsers) SetRole(ctx context.Context, id primitive.ObjectID, role roles.Role) (*auth.User, error) {
	return s.updateOne(ctx, id, bson.M{"role": role})
}

func (s *MongoUsers) updateOne(ctx context.Context, id primitive.ObjectID, fields bson.M) (*auth.User, error) {
	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user auth.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (s *MongoUsers) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.updateOne(ctx, id, bson.M{"is_active": false})
	return err
}

func (s *MongoUsers) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": now}})
	if err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}
