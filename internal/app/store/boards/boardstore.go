// internal/app/store/boards/boardstore.go
package boardstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskplanner/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boards")}
}

var errBlankTitle = errors.New("board title is required")

// Create inserts a new board. Memberships are written separately.
func (s *Store) Create(ctx context.Context, b models.Board) (models.Board, error) {
	if b.Title == "" {
		return models.Board{}, errBlankTitle
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.TitleCI = text.Fold(b.Title)
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// GetLive loads a board that has not been soft-deleted. Returns
// mongo.ErrNoDocuments otherwise.
func (s *Store) GetLive(ctx context.Context, id primitive.ObjectID) (*models.Board, error) {
	var b models.Board
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListLive returns one page of the live boards among ids, newest first, and
// the total number of live boards among ids.
func (s *Store) ListLive(ctx context.Context, ids []primitive.ObjectID, skip, limit int64) ([]models.Board, int64, error) {
	if len(ids) == 0 {
		return []models.Board{}, 0, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Board{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateTitle renames a live board and returns the stored result.
func (s *Store) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Board, error) {
	if title == "" {
		return nil, errBlankTitle
	}
	var b models.Board
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{
			"title":      title,
			"title_ci":   text.Fold(title),
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SoftDelete stamps deleted_at on a live board. Child tasks are left as-is.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
