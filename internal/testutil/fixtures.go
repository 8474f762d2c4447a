package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/taskplanner/internal/app/system/authutil"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// FixturePassword is the plain-text password of every fixture user.
const FixturePassword = "password123"

// CreateUser creates a live user whose password is FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()

	// Minimum cost keeps fixture setup fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateDeletedUser creates a soft-deleted user.
func (f *Fixtures) CreateDeletedUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    "Gone",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
		DeletedAt:    &now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateBoard creates a live board without any membership.
func (f *Fixtures) CreateBoard(ctx context.Context, title string) models.Board {
	f.t.Helper()

	now := time.Now().UTC()
	board := models.Board{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "boards", board)
	return board
}

// CreateMembership links a user to a board.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, boardID primitive.ObjectID) models.BoardMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.BoardMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		BoardID:   boardID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "board_memberships", m)
	return m
}

// CreateOwnedBoard creates a board and a membership for userID.
func (f *Fixtures) CreateOwnedBoard(ctx context.Context, userID primitive.ObjectID, title string) models.Board {
	f.t.Helper()
	b := f.CreateBoard(ctx, title)
	f.CreateMembership(ctx, userID, b.ID)
	return b
}

// CreateTask creates a live, incomplete task on a board.
func (f *Fixtures) CreateTask(ctx context.Context, boardID primitive.ObjectID, title string) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		BoardID:   boardID,
		Title:     title,
		TitleCI:   text.Fold(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "tasks", task)
	return task
}

// CreateItem creates a live item under a task.
func (f *Fixtures) CreateItem(ctx context.Context, taskID primitive.ObjectID, title string, checked bool) models.Item {
	f.t.Helper()

	now := time.Now().UTC()
	item := models.Item{
		ID:          primitive.NewObjectID(),
		TaskID:      taskID,
		Title:       title,
		TitleCI:     text.Fold(title),
		ItemChecked: checked,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "items", item)
	return item
}

// CheckFixturePassword reports whether hash matches FixturePassword.
func CheckFixturePassword(hash string) bool {
	return authutil.CheckPassword(FixturePassword, hash)
}
