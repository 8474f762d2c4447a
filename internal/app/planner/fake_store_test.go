package planner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/taskplanner/internal/app/system/normalize"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeDB is an in-memory backing for every planner store interface. Times
// come from a ticking clock so creation order is total.
type fakeDB struct {
	mu          sync.Mutex
	clock       time.Time
	users       map[primitive.ObjectID]*models.User
	boards      map[primitive.ObjectID]*models.Board
	memberships []*models.BoardMembership
	tasks       map[primitive.ObjectID]*models.Task
	items       map[primitive.ObjectID]*models.Item

	// casHook runs before every conditional completion write; tests use it
	// to inject concurrent writes.
	casHook  func(id primitive.ObjectID)
	casCalls int

	failMembership error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:  map[primitive.ObjectID]*models.User{},
		boards: map[primitive.ObjectID]*models.Board{},
		tasks:  map[primitive.ObjectID]*models.Task{},
		items:  map[primitive.ObjectID]*models.Item{},
	}
}

func (db *fakeDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *fakeDB) stores() Stores {
	return Stores{
		Users:       fakeUsers{db},
		Memberships: fakeMemberships{db},
		Boards:      fakeBoards{db},
		Tasks:       fakeTasks{db},
		Items:       fakeItems{db},
	}
}

func (db *fakeDB) addUser(email string) models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	now := db.tick()
	u := &models.User{ID: primitive.NewObjectID(), FirstName: "F", LastName: "L", Email: email, PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	db.users[u.ID] = u
	return *u
}

// --- users ---

type fakeUsers struct{ db *fakeDB }

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == normalize.Email(email) && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// --- memberships ---

type fakeMemberships struct{ db *fakeDB }

func (f fakeMemberships) Add(_ context.Context, userID, boardID primitive.ObjectID) (models.BoardMembership, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failMembership != nil {
		return models.BoardMembership{}, f.db.failMembership
	}
	for _, m := range f.db.memberships {
		if m.UserID == userID && m.BoardID == boardID {
			return models.BoardMembership{}, errors.New("duplicate membership")
		}
	}
	now := f.db.tick()
	m := &models.BoardMembership{ID: primitive.NewObjectID(), UserID: userID, BoardID: boardID, CreatedAt: now, UpdatedAt: now}
	f.db.memberships = append(f.db.memberships, m)
	return *m, nil
}

func (f fakeMemberships) Exists(_ context.Context, userID, boardID primitive.ObjectID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, m := range f.db.memberships {
		if m.UserID == userID && m.BoardID == boardID && m.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeMemberships) BoardIDsForUser(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []primitive.ObjectID
	for _, m := range f.db.memberships {
		if m.UserID == userID && m.DeletedAt == nil {
			ids = append(ids, m.BoardID)
		}
	}
	return ids, nil
}

// --- boards ---

type fakeBoards struct{ db *fakeDB }

func (f fakeBoards) Create(_ context.Context, b models.Board) (models.Board, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := f.db.tick()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := b
	f.db.boards[b.ID] = &cp
	return b, nil
}

func (f fakeBoards) GetLive(_ context.Context, id primitive.ObjectID) (*models.Board, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.boards[id]
	if !ok || b.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	cp := *b
	return &cp, nil
}

func (f fakeBoards) ListLive(_ context.Context, ids []primitive.ObjectID, skip, limit int64) ([]models.Board, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var all []models.Board
	for _, id := range ids {
		if b, ok := f.db.boards[id]; ok && b.DeletedAt == nil {
			all = append(all, *b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if skip >= total {
		return []models.Board{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (f fakeBoards) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) (*models.Board, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.boards[id]
	if !ok || b.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	b.Title = title
	b.UpdatedAt = f.db.tick()
	cp := *b
	return &cp, nil
}

func (f fakeBoards) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.boards[id]
	if !ok || b.DeletedAt != nil {
		return mongo.ErrNoDocuments
	}
	now := f.db.tick()
	b.DeletedAt = &now
	return nil
}

// --- tasks ---

type fakeTasks struct{ db *fakeDB }

func (f fakeTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t.ID = primitive.NewObjectID()
	now := f.db.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Completed = false
	t.ItemsRev = 0
	cp := t
	f.db.tasks[t.ID] = &cp
	return t, nil
}

func (f fakeTasks) live(id primitive.ObjectID) (*models.Task, error) {
	t, ok := f.db.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	return t, nil
}

func (f fakeTasks) Get(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tasks[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *t
	return &cp, nil
}

func (f fakeTasks) GetLive(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (f fakeTasks) ListLiveByBoard(_ context.Context, boardID primitive.ObjectID) ([]models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.Task{}
	for _, t := range f.db.tasks {
		if t.BoardID == boardID && t.DeletedAt == nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeTasks) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) (*models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return nil, err
	}
	t.Title = title
	t.UpdatedAt = f.db.tick()
	cp := *t
	return &cp, nil
}

func (f fakeTasks) ToggleCompleted(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	cp := *t
	return &cp, nil
}

func (f fakeTasks) BumpItemsRev(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return 0, err
	}
	t.ItemsRev++
	return t.ItemsRev, nil
}

func (f fakeTasks) SetCompletedAtRev(_ context.Context, id primitive.ObjectID, rev int64, completed bool) (bool, error) {
	f.db.mu.Lock()
	hook := f.db.casHook
	f.db.casCalls++
	f.db.mu.Unlock()
	if hook != nil {
		hook(id)
	}

	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return false, err
	}
	if t.ItemsRev != rev {
		return false, nil
	}
	t.Completed = completed
	return true, nil
}

func (f fakeTasks) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, err := f.live(id)
	if err != nil {
		return err
	}
	now := f.db.tick()
	t.DeletedAt = &now
	return nil
}

// --- items ---

type fakeItems struct{ db *fakeDB }

func (f fakeItems) Create(_ context.Context, it models.Item) (models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it.ID = primitive.NewObjectID()
	now := f.db.tick()
	it.CreatedAt, it.UpdatedAt = now, now
	it.ItemChecked = false
	cp := it
	f.db.items[it.ID] = &cp
	return it, nil
}

func (f fakeItems) live(id primitive.ObjectID) (*models.Item, error) {
	it, ok := f.db.items[id]
	if !ok || it.DeletedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	return it, nil
}

func (f fakeItems) GetLive(_ context.Context, id primitive.ObjectID) (*models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, err := f.live(id)
	if err != nil {
		return nil, err
	}
	cp := *it
	return &cp, nil
}

func (f fakeItems) listLocked(taskID primitive.ObjectID) []models.Item {
	out := []models.Item{}
	for _, it := range f.db.items {
		if it.TaskID == taskID && it.DeletedAt == nil {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f fakeItems) ListLiveByTask(_ context.Context, taskID primitive.ObjectID) ([]models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.listLocked(taskID), nil
}

func (f fakeItems) ListLiveByTasks(_ context.Context, taskIDs []primitive.ObjectID) (map[primitive.ObjectID][]models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[primitive.ObjectID][]models.Item{}
	for _, id := range taskIDs {
		if items := f.listLocked(id); len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

func (f fakeItems) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) (*models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, err := f.live(id)
	if err != nil {
		return nil, err
	}
	it.Title = title
	cp := *it
	return &cp, nil
}

func (f fakeItems) ToggleChecked(_ context.Context, id primitive.ObjectID) (*models.Item, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, err := f.live(id)
	if err != nil {
		return nil, err
	}
	it.ItemChecked = !it.ItemChecked
	cp := *it
	return &cp, nil
}

func (f fakeItems) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	it, err := f.live(id)
	if err != nil {
		return err
	}
	now := f.db.tick()
	it.DeletedAt = &now
	return nil
}

// recordingTx counts Run calls and runs fn inline.
type recordingTx struct{ runs int }

func (r *recordingTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	r.runs++
	return fn(ctx)
}
