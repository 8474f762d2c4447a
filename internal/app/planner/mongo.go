package planner

import (
	boardstore "github.com/dalemusser/taskplanner/internal/app/store/boards"
	itemstore "github.com/dalemusser/taskplanner/internal/app/store/items"
	membershipstore "github.com/dalemusser/taskplanner/internal/app/store/memberships"
	taskstore "github.com/dalemusser/taskplanner/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskplanner/internal/app/store/users"
	"github.com/dalemusser/taskplanner/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewMongo wires a Service to the MongoDB stores. Board creation runs in a
// transaction when the deployment supports one.
func NewMongo(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Service {
	return New(Stores{
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Boards:      boardstore.New(db),
		Tasks:       taskstore.New(db),
		Items:       itemstore.New(db),
		Tx:          txn.New(client, logger),
	}, logger)
}
