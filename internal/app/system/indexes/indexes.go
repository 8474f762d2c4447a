// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, step := range []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"boards", ensureBoards},
		{"board_memberships", ensureBoardMemberships},
		{"tasks", ensureTasks},
		{"items", ensureItems},
		{"audit_events", ensureAuditEvents},
	} {
		if err := step.fn(ctx, db); err != nil {
			problems = append(problems, step.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

type desiredIndex struct {
	name   string
	sig    string
	unique bool
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func describe(m mongo.IndexModel) desiredIndex {
	d := desiredIndex{sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique != nil && *m.Options.Unique
	}
	return d
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Returned when an index with the same name but different keys/options exists.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") || strings.Contains(err.Error(), "IndexKeySpecsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		want := describe(m)
		if err := ensureIndex(ctx, coll, m, want); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", want.name),
				zap.String("keys", want.sig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), want.name, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, want desiredIndex) error {
	start := time.Now()

	// A listing failure is not fatal; CreateOne below still reports conflicts.
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		existing = nil
	}

	if ex, ok := existing[want.sig]; ok {
		exUnique := ex.Unique != nil && *ex.Unique
		if exUnique == want.unique && (want.name == "" || ex.Name == want.name) {
			zap.L().Info("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", want.sig),
				zap.String("took", time.Since(start).String()))
			return nil
		}
		// Same keys, different name or uniqueness: drop and recreate.
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("drop %s: %w", ex.Name, err)
		}
	}

	_, err = coll.Indexes().CreateOne(ctx, m)
	if err != nil && isOptionsConflictErr(err) && want.name != "" {
		// The desired name is taken by an index on other keys.
		if _, dropErr := coll.Indexes().DropOne(ctx, want.name); dropErr == nil {
			_, err = coll.Indexes().CreateOne(ctx, m)
		}
	}
	if err != nil {
		if isDuplicateKeyErr(err) && want.unique {
			return fmt.Errorf("cannot create unique index (duplicates present)%s", duplicateHint(coll.Name(), want.sig))
		}
		return err
	}

	zap.L().Info("index ensured",
		zap.String("collection", coll.Name()),
		zap.String("name", want.name),
		zap.String("keys", want.sig),
		zap.Bool("unique", want.unique),
		zap.String("took", time.Since(start).String()))
	return nil
}

func duplicateHint(coll, sig string) string {
	switch {
	case coll == "users" && strings.Contains(sig, "email:1"):
		return "; find them with " +
			`db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case coll == "board_memberships":
		return "; find them with " +
			`db.board_memberships.aggregate([{ $group: { _id: { u: "$user_id", b: "$board_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	return ""
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Email is unique forever, soft-deleted accounts included.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
}

func ensureBoards(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("boards"), []mongo.IndexModel{
		// Board listing: live boards newest first, _id as tiebreaker.
		{
			Keys: bson.D{
				{Key: "deleted_at", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_boards_deleted_created_id"),
		},
	})
}

func ensureBoardMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("board_memberships"), []mongo.IndexModel{
		// One membership per (user, board); also serves the access check.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "board_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_board_memberships_user_board"),
		},
		{
			Keys:    bson.D{{Key: "board_id", Value: 1}},
			Options: options.Index().SetName("idx_board_memberships_board"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tasks"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "board_id", Value: 1},
				{Key: "deleted_at", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_tasks_board_deleted_created"),
		},
	})
}

func ensureItems(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("items"), []mongo.IndexModel{
		// Serves both the embedded item lists and completion recompute.
		{
			Keys: bson.D{
				{Key: "task_id", Value: 1},
				{Key: "deleted_at", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_items_task_deleted_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_ts"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_user_ts"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_events_category_type_ts"),
		},
	})
}
