// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskplanner/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("board_memberships")}
}

var (
	// ErrDuplicateMembership is returned when the (user, board) pair already exists.
	ErrDuplicateMembership = errors.New("user is already a member of this board")
	errMissingRef          = errors.New("membership needs both a user and a board")
)

// Add creates the membership linking userID to boardID.
func (s *Store) Add(ctx context.Context, userID, boardID primitive.ObjectID) (models.BoardMembership, error) {
	if userID.IsZero() || boardID.IsZero() {
		return models.BoardMembership{}, errMissingRef
	}
	now := time.Now().UTC()
	m := models.BoardMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		BoardID:   boardID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.BoardMembership{}, ErrDuplicateMembership
		}
		return models.BoardMembership{}, err
	}
	return m, nil
}

// Exists checks if a live membership exists for the given user and board.
func (s *Store) Exists(ctx context.Context, userID, boardID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"board_id":   boardID,
		"deleted_at": nil,
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// BoardIDsForUser returns the ids of every board the user holds a live
// membership on.
func (s *Store) BoardIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"user_id": userID, "deleted_at": nil},
		options.Find().SetProjection(bson.M{"board_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		BoardID primitive.ObjectID `bson:"board_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.BoardID)
	}
	return ids, nil
}
