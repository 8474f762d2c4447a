package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskplanner/internal/app/system/normalize"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errMissingHash    = errors.New("password hash is required")
	errMissingEmail   = errors.New("email is required")
)

// live restricts a filter to users that have not been soft-deleted.
func live(f bson.M) bson.M {
	f["deleted_at"] = nil
	return f
}

// GetByEmail looks up a live user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found or soft-deleted.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, live(bson.M{"email": normalize.Email(email)})).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailExists reports whether any user, live or soft-deleted, holds email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new user after normalizing fields. Email stays unique
// across soft-deleted users too, so a deleted account's address cannot be
// registered again.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errMissingEmail
	}
	if u.PasswordHash == "" {
		return models.User{}, errMissingHash
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateProfile sets the names of a live user. Email is not updatable.
// Returns mongo.ErrNoDocuments when no live user has that id.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName string) error {
	res, err := s.c.UpdateOne(ctx, live(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"first_name": normalize.Name(firstName),
		"last_name":  normalize.Name(lastName),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePassword replaces the stored hash of a live user.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	if hash == "" {
		return errMissingHash
	}
	res, err := s.c.UpdateOne(ctx, live(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete stamps deleted_at on a live user. Deleting an already deleted
// user returns mongo.ErrNoDocuments.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, live(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"deleted_at": now,
		"updated_at": now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
