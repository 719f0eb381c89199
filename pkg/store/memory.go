package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/roles"
)

// In-memory repositories backing handler and bridge tests. They hold the
// same contracts as the mongo implementations, including idempotent
// provisioning.

// MemoryUsers is an in-memory Users implementation.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User // keyed by external id

	// ProvisionErr, when set, fails the next Provision call. Lets tests
	// simulate datastore and provider outages.
	ProvisionErr error
	// ProvisionCalls counts Provision invocations for idempotence tests.
	ProvisionCalls int
}

// NewMemoryUsers returns an empty in-memory user repository.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*auth.User)}
}

func (s *MemoryUsers) Provision(ctx context.Context, claims auth.Claims, defaultRole roles.Role) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProvisionCalls++
	if s.ProvisionErr != nil {
		err := s.ProvisionErr
		s.ProvisionErr = nil
		return nil, err
	}

	now := time.Now().UTC()
	if existing, ok := s.users[claims.Subject]; ok {
		existing.Email = claims.Email
		existing.Name = claims.Name
		existing.UpdatedAt = now
		copied := *existing
		return &copied, nil
	}

	user := &auth.User{
		ID:         primitive.NewObjectID(),
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       defaultRole,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users[claims.Subject] = user
	copied := *user
	return &copied, nil
}

func (s *MemoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) FindByExternalID(ctx context.Context, externalID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[externalID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) List(ctx context.Context) ([]auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*auth.User, error) {
	return s.mutate(id, func(u *auth.User) {
		u.Name = name
		u.Email = email
	})
}

func (s *MemoryUsers) SetRole(ctx context.Context, id primitive.ObjectID, role roles.Role) (*auth.User, error) {
	return s.mutate(id, func(u *auth.User) { u.Role = role })
}

func (s *MemoryUsers) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.mutate(id, func(u *auth.User) { u.IsActive = false })
	return err
}

func (s *MemoryUsers) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.mutate(id, func(u *auth.User) { u.LastLoginAt = &now })
	return err
}

func (s *MemoryUsers) mutate(id primitive.ObjectID, fn func(*auth.User)) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			fn(user)
			user.UpdatedAt = time.Now().UTC()
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryDocuments is an in-memory Documents implementation. Filters support
// exact-match keys plus $ne, which is all the handlers use.
type MemoryDocuments[T any] struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]T
}

// NewMemoryDocuments returns an empty in-memory document repository.
func NewMemoryDocuments[T any]() *MemoryDocuments[T] {
	return &MemoryDocuments[T]{docs: make(map[primitive.ObjectID]T)}
}

func (s *MemoryDocuments[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := documentID(*doc)
	if id.IsZero() {
		id = primitive.NewObjectID()
	}
	s.docs[id] = *doc
	return id, nil
}

// documentID reads the _id field out of the bson rendering of doc.
func documentID[T any](doc T) primitive.ObjectID {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID
	}
	var asMap bson.M
	if err := bson.Unmarshal(raw, &asMap); err != nil {
		return primitive.NilObjectID
	}
	if id, ok := asMap["_id"].(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}

func (s *MemoryDocuments[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryDocuments[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []T{}
	for id, doc := range s.docs {
		if matches(id, doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *MemoryDocuments[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	s.docs[id] = *doc
	return nil
}

func (s *MemoryDocuments[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// matches compares filter keys against the bson rendering of the document,
// so filters written for mongo also work against the fake.
func matches[T any](id primitive.ObjectID, doc T, filter bson.M) bool {
	if len(filter) == 0 {
		return true
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false
	}
	var asMap bson.M
	if err := bson.Unmarshal(raw, &asMap); err != nil {
		return false
	}
	asMap["_id"] = id

	for key, want := range filter {
		got, ok := asMap[key]
		if !ok {
			return false
		}
		if op, isOp := want.(bson.M); isOp {
			if ne, has := op["$ne"]; has && len(op) == 1 {
				if fmt.Sprintf("%v", got) == fmt.Sprintf("%v", ne) {
					return false
				}
				continue
			}
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}
