package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task belongs to exactly one board.
//
// Completed is derived from the task's live items (see planner.Completed)
// and is rewritten after every item create/toggle/delete. The only direct
// write is the manual toggle, which may disagree with the items until the
// next item mutation.
//
// ItemsRev counts checked-state changes to the task's items (create, toggle,
// delete). Completion writes are conditional on it.
type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BoardID   primitive.ObjectID `bson:"board_id" json:"board_id"`
	Title     string             `bson:"title" json:"title"`
	TitleCI   string             `bson:"title_ci" json:"title_ci"`
	Completed bool               `bson:"completed" json:"completed"`
	ItemsRev  int64              `bson:"items_rev" json:"items_rev"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at,omitempty"`
}
