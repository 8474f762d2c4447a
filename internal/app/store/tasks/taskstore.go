// internal/app/store/tasks/taskstore.go
package taskstore

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
	return &Store{c: db.Collection("tasks")}
}

var (
	errBlankTitle   = errors.New("task title is required")
	errMissingBoard = errors.New("task needs a board")
)

func liveByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "deleted_at": nil}
}

// Create inserts a new, incomplete task.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Title == "" {
		return models.Task{}, errBlankTitle
	}
	if t.BoardID.IsZero() {
		return models.Task{}, errMissingBoard
	}
	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	t.Completed = false
	t.ItemsRev = 0
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetLive loads a task that has not been soft-deleted.
func (s *Store) GetLive(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, liveByID(id)).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get loads a task whether or not it has been soft-deleted.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListLiveByBoard returns the live tasks of a board, newest first.
func (s *Store) ListLiveByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"board_id": boardID, "deleted_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) update(ctx context.Context, filter, set bson.M) (*models.Task, error) {
	set["updated_at"] = time.Now().UTC()
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTitle renames a live task and returns the stored result.
func (s *Store) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Task, error) {
	if title == "" {
		return nil, errBlankTitle
	}
	return s.update(ctx, liveByID(id), bson.M{"title": title, "title_ci": text.Fold(title)})
}

// ToggleCompleted flips completed in a single write and returns the result.
func (s *Store) ToggleCompleted(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"completed":  bson.M{"$not": bson.A{"$completed"}},
			"updated_at": time.Now().UTC(),
		}}},
	}
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, liveByID(id), pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// BumpItemsRev increments items_rev on a live task and returns the new
// revision. Call it after every change to the task's item set or checked
// states.
func (s *Store) BumpItemsRev(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, liveByID(id),
		bson.M{"$inc": bson.M{"items_rev": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"items_rev": 1})).Decode(&t)
	if err != nil {
		return 0, err
	}
	return t.ItemsRev, nil
}

// SetCompletedAtRev writes completed only while items_rev still equals rev,
// so the value cannot be derived from an item list that changed underneath.
// It reports whether the write happened. A missing or deleted task returns
// mongo.ErrNoDocuments.
func (s *Store) SetCompletedAtRev(ctx context.Context, id primitive.ObjectID, rev int64, completed bool) (bool, error) {
	filter := liveByID(id)
	filter["items_rev"] = rev
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"completed":  completed,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	// Distinguish a lost race from a vanished task.
	if err := s.c.FindOne(ctx, liveByID(id), options.FindOne().SetProjection(bson.M{"_id": 1})).Err(); err != nil {
		return false, err
	}
	return false, nil
}

// SoftDelete stamps deleted_at on a live task. Items are left as-is.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, liveByID(id),
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
