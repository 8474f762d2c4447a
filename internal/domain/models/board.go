package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Board groups tasks. Who may see a board is decided solely by the
// board_memberships collection; the board itself holds no user references.
type Board struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"title_ci"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at,omitempty"`
}

func (b Board) IsDeleted() bool { return b.DeletedAt != nil }
