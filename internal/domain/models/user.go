package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Email is the login identity and the JWT
// subject; it is stored lower-cased and never changes after registration.
//
// NOTE:
//   - Board access is not embedded on User.
//     Use the board_memberships collection to discover a user's boards.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool { return u.DeletedAt != nil }
