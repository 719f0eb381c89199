package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Documents is the uniform CRUD surface the resource handlers build on. The
// domain records have no behavior beyond ownership and status, so one
// repository shape covers all of them.
type Documents[T any] interface {
	Insert(ctx context.Context, doc *T) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Find(ctx context.Context, filter bson.M) ([]T, error)
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoDocuments implements Documents on a single collection.
type MongoDocuments[T any] struct {
	coll *mongo.Collection
}

// NewMongoDocuments returns a repository bound to the named collection.
func NewMongoDocuments[T any](db *mongo.Database, collection string) *MongoDocuments[T] {
	return &MongoDocuments[T]{coll: db.Collection(collection)}
}

func (s *MongoDocuments[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", s.coll.Name(), err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert %s: unexpected id type %T", s.coll.Name(), res.InsertedID)
	}
	return id, nil
}

func (s *MongoDocuments[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.coll.Name(), err)
	}
	return &doc, nil
}

func (s *MongoDocuments[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
	}
	return docs, nil
}

func (s *MongoDocuments[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", s.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDocuments[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
