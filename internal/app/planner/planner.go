// Package planner holds the board, task, and item operations. Every call
// takes the caller's email explicitly, walks the ownership chain
// (item -> task -> board -> membership) before touching anything, and keeps
// each task's completed flag in step with its items.
package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore resolves callers. GetByEmail must ignore soft-deleted users and
// return mongo.ErrNoDocuments when nothing matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// MembershipStore is the board access gate.
type MembershipStore interface {
	Add(ctx context.Context, userID, boardID primitive.ObjectID) (models.BoardMembership, error)
	Exists(ctx context.Context, userID, boardID primitive.ObjectID) (bool, error)
	BoardIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// BoardStore persists boards. Lookups by id only see live boards and report
// mongo.ErrNoDocuments otherwise.
type BoardStore interface {
	Create(ctx context.Context, b models.Board) (models.Board, error)
	GetLive(ctx context.Context, id primitive.ObjectID) (*models.Board, error)
	ListLive(ctx context.Context, ids []primitive.ObjectID, skip, limit int64) ([]models.Board, int64, error)
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Board, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// TaskStore persists tasks. Same live-only contract as BoardStore, except
// Get, which also returns soft-deleted tasks.
type TaskStore interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	GetLive(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	ListLiveByBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.Task, error)
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Task, error)
	ToggleCompleted(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	BumpItemsRev(ctx context.Context, id primitive.ObjectID) (int64, error)
	SetCompletedAtRev(ctx context.Context, id primitive.ObjectID, rev int64, completed bool) (bool, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// ItemStore persists checklist items. Same live-only contract as BoardStore.
type ItemStore interface {
	Create(ctx context.Context, it models.Item) (models.Item, error)
	GetLive(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	ListLiveByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Item, error)
	ListLiveByTasks(ctx context.Context, taskIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Item, error)
	UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (*models.Item, error)
	ToggleChecked(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// Transactor runs fn as one unit of work where the backend allows it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores bundles the persistence the planner needs.
type Stores struct {
	Users       UserStore
	Memberships MembershipStore
	Boards      BoardStore
	Tasks       TaskStore
	Items       ItemStore
	Tx          Transactor
}

// Service implements the board, task, and item operations.
type Service struct {
	users       UserStore
	memberships MembershipStore
	boards      BoardStore
	tasks       TaskStore
	items       ItemStore
	tx          Transactor
	log         *zap.Logger
}

// New builds a Service. A nil Tx runs multi-write operations sequentially.
func New(st Stores, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	tx := st.Tx
	if tx == nil {
		tx = sequential{}
	}
	return &Service{
		users:       st.Users,
		memberships: st.Memberships,
		boards:      st.Boards,
		tasks:       st.Tasks,
		items:       st.Items,
		tx:          tx,
		log:         logger,
	}
}

type sequential struct{}

func (sequential) Run(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
