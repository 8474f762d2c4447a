// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. Servers without collMod/validator support log and skip.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("boards", boardsSchema())
	ensure("board_memberships", boardMembershipsSchema())
	ensure("tasks", tasksSchema())
	ensure("items", itemsSchema())

	// Append-only; shape is owned by store/audit.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection creates name if it is missing. created is true only when
// this call created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

// setValidator uses moderate validation so pre-existing documents that do not
// match are left alone until they are next updated.
func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

// commandErr matches err by server code or by any phrase in its message.
func commandErr(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// nonBlank matches a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

var optionalDate = bson.M{"bsonType": bson.A{"date", "null"}}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"first_name", "last_name", "email", "password_hash"},
			"properties": bson.M{
				"first_name":    nonBlank,
				"last_name":     nonBlank,
				"email":         bson.M{"bsonType": "string", "minLength": 3, "pattern": "^[^@\\s]+@[^@\\s]+$"},
				"password_hash": nonBlank,
				"deleted_at":    optionalDate,
			},
		},
	}
}

func boardsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "title_ci"},
			"properties": bson.M{
				"title":      nonBlank,
				"title_ci":   nonBlank,
				"deleted_at": optionalDate,
			},
		},
	}
}

func boardMembershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "board_id"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"board_id":   bson.M{"bsonType": "objectId"},
				"created_at": bson.M{"bsonType": "date"},
				"deleted_at": optionalDate,
			},
		},
	}
}

func tasksSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"board_id", "title", "title_ci", "completed"},
			"properties": bson.M{
				"board_id":   bson.M{"bsonType": "objectId"},
				"title":      nonBlank,
				"title_ci":   nonBlank,
				"completed":  bson.M{"bsonType": "bool"},
				"items_rev":  bson.M{"bsonType": bson.A{"int", "long"}},
				"deleted_at": optionalDate,
			},
		},
	}
}

func itemsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"task_id", "title", "title_ci", "item_checked"},
			"properties": bson.M{
				"task_id":      bson.M{"bsonType": "objectId"},
				"title":        nonBlank,
				"title_ci":     nonBlank,
				"item_checked": bson.M{"bsonType": "bool"},
				"deleted_at":   optionalDate,
			},
		},
	}
}
