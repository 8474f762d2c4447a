// internal/app/store/items/itemstore.go
package itemstore

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
	return &Store{c: db.Collection("items")}
}

var (
	errBlankTitle  = errors.New("item title is required")
	errMissingTask = errors.New("item needs a task")
)

func liveByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "deleted_at": nil}
}

// checklistOrder lists items in the order they were added.
var checklistOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// Create inserts a new, unchecked item.
func (s *Store) Create(ctx context.Context, it models.Item) (models.Item, error) {
	if it.Title == "" {
		return models.Item{}, errBlankTitle
	}
	if it.TaskID.IsZero() {
		return models.Item{}, errMissingTask
	}
	it.ID = primitive.NewObjectID()
	it.TitleCI = text.Fold(it.Title)
	it.ItemChecked = false
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	it.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// GetLive loads an item that has not been soft-deleted.
func (s *Store) GetLive(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var it models.Item
	if err := s.c.FindOne(ctx, liveByID(id)).Decode(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListLiveByTask returns the live items of one task in checklist order.
func (s *Store) ListLiveByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Item, error) {
	return s.find(ctx, bson.M{"task_id": taskID, "deleted_at": nil})
}

// ListLiveByTasks returns the live items of several tasks, grouped by task
// id, each group in checklist order. Tasks without items are absent.
func (s *Store) ListLiveByTasks(ctx context.Context, taskIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Item, error) {
	out := make(map[primitive.ObjectID][]models.Item, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	rows, err := s.find(ctx, bson.M{"task_id": bson.M{"$in": taskIDs}, "deleted_at": nil})
	if err != nil {
		return nil, err
	}
	for _, it := range rows {
		out[it.TaskID] = append(out[it.TaskID], it)
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Item, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(checklistOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTitle renames a live item and returns the stored result.
func (s *Store) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Item, error) {
	if title == "" {
		return nil, errBlankTitle
	}
	var it models.Item
	err := s.c.FindOneAndUpdate(ctx, liveByID(id),
		bson.M{"$set": bson.M{
			"title":      title,
			"title_ci":   text.Fold(title),
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ToggleChecked flips item_checked in a single write and returns the result.
func (s *Store) ToggleChecked(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"item_checked": bson.M{"$not": bson.A{"$item_checked"}},
			"updated_at":   time.Now().UTC(),
		}}},
	}
	var it models.Item
	err := s.c.FindOneAndUpdate(ctx, liveByID(id), pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// SoftDelete stamps deleted_at on a live item.
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
