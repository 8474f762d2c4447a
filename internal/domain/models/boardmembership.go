package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoardMembership is the authoritative join between users and boards.
// Exactly one document per (user_id, board_id). A live membership is the
// only thing that grants access to a board.
type BoardMembership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	BoardID primitive.ObjectID `bson:"board_id" json:"board_id"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at,omitempty"`
}
