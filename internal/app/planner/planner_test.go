package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/paging"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

func newTestService(t *testing.T) (*Service, *fakeDB) {
	t.Helper()
	db := newFakeDB()
	db.addUser(alice)
	db.addUser(bob)
	return New(db.stores(), zap.NewNop()), db
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind: got %v, want %v (err=%v)", got, kind, err)
	}
}

func mustBoard(t *testing.T, s *Service, email, title string) BoardView {
	t.Helper()
	c, err := s.CreateBoard(context.Background(), email, title)
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	return c.View()
}

func mustTask(t *testing.T, s *Service, email, boardID, title string) TaskView {
	t.Helper()
	v, err := s.CreateTask(context.Background(), email, boardID, title)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return v
}

func itemByTitle(t *testing.T, v TaskView, title string) ItemView {
	t.Helper()
	for _, it := range v.Items {
		if it.Title == title {
			return it
		}
	}
	t.Fatalf("item %q not in %+v", title, v.Items)
	return ItemView{}
}

func TestCompleted(t *testing.T) {
	tests := []struct {
		name  string
		items []models.Item
		want  bool
	}{
		{"no items", nil, false},
		{"one unchecked", []models.Item{{ItemChecked: false}}, false},
		{"one checked", []models.Item{{ItemChecked: true}}, true},
		{"mixed", []models.Item{{ItemChecked: true}, {ItemChecked: false}}, false},
		{"all checked", []models.Item{{ItemChecked: true}, {ItemChecked: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Completed(tt.items); got != tt.want {
				t.Errorf("Completed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChecklistScenario(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "Personal")
	task := mustTask(t, s, alice, board.ID, "Daily")
	if task.Completed || len(task.Items) != 0 || task.Items == nil {
		t.Fatalf("new task: %+v", task)
	}

	v, err := s.CreateItem(ctx, alice, task.ID, "Buy milk")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if v.Completed {
		t.Error("one unchecked item: task must be incomplete")
	}
	if v.ID != task.ID || len(v.Items) != 1 {
		t.Fatalf("CreateItem must return the parent task view, got %+v", v)
	}

	milk := itemByTitle(t, v, "Buy milk")
	v, err = s.ToggleItem(ctx, alice, milk.ID)
	if err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	if !v.Completed {
		t.Error("all items checked: task must be complete")
	}
	if !itemByTitle(t, v, "Buy milk").ItemChecked {
		t.Error("milk should be checked")
	}

	v, err = s.CreateItem(ctx, alice, task.ID, "Buy eggs")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if v.Completed {
		t.Error("new unchecked item must reopen the task")
	}

	eggs := itemByTitle(t, v, "Buy eggs")
	v, err = s.DeleteItem(ctx, alice, eggs.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if !v.Completed || len(v.Items) != 1 {
		t.Errorf("deleting the only unchecked item must complete the task: %+v", v)
	}

	v, err = s.DeleteItem(ctx, alice, milk.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if v.Completed || len(v.Items) != 0 {
		t.Errorf("no live items means incomplete: %+v", v)
	}
}

func TestUpdateItem_DoesNotRecompute(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "one")

	// Manual override disagrees with the items.
	if _, err := s.ToggleTask(ctx, alice, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	calls := db.casCalls

	v, err := s.UpdateItem(ctx, alice, v.Items[0].ID, "renamed")
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !v.Completed {
		t.Error("rename must keep the manual completed value")
	}
	if v.Items[0].Title != "renamed" {
		t.Errorf("title: %q", v.Items[0].Title)
	}
	if db.casCalls != calls {
		t.Error("rename must not recompute completion")
	}

	// The next item mutation brings the flag back in line.
	v, err = s.CreateItem(ctx, alice, task.ID, "two")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if v.Completed {
		t.Error("recompute must override the manual toggle")
	}
}

func TestToggleTask_ManualOverride(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")

	v, err := s.ToggleTask(ctx, alice, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !v.Completed {
		t.Error("toggle on a task with no items still flips it")
	}
	v, _ = s.ToggleTask(ctx, alice, task.ID)
	if v.Completed {
		t.Error("second toggle flips back")
	}
}

func TestCreateBoard_CreatesMembershipInOneUnit(t *testing.T) {
	db := newFakeDB()
	db.addUser(alice)
	tx := &recordingTx{}
	st := db.stores()
	st.Tx = tx
	s := New(st, zap.NewNop())

	c, err := s.CreateBoard(context.Background(), alice, "  <b>Work</b>  plan ")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if tx.runs != 1 {
		t.Errorf("expected one transaction, got %d", tx.runs)
	}
	if c.Board.Title != "Work plan" {
		t.Errorf("title: got %q", c.Board.Title)
	}
	if c.Actor.Email != alice {
		t.Errorf("actor: got %q", c.Actor.Email)
	}
	if len(db.memberships) != 1 || db.memberships[0].BoardID != c.Board.ID || db.memberships[0].UserID != c.Actor.ID {
		t.Errorf("memberships: %+v", db.memberships)
	}
}

func TestCreateBoard_MembershipFailureIsInternal(t *testing.T) {
	s, db := newTestService(t)
	db.failMembership = errors.New("write conflict")

	_, err := s.CreateBoard(context.Background(), alice, "B")
	wantKind(t, err, apperr.Internal)
	if apperr.MessageOf(err) != apperr.MsgInternal {
		t.Errorf("message: %q", apperr.MessageOf(err))
	}
}

func TestCreateMembership_RequiresBothSides(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	u := &models.User{ID: primitive.NewObjectID()}
	b := &models.Board{ID: primitive.NewObjectID()}

	_, err := s.CreateMembership(ctx, nil, b)
	wantKind(t, err, apperr.InvalidArgument)
	_, err = s.CreateMembership(ctx, u, &models.Board{})
	wantKind(t, err, apperr.InvalidArgument)

	m, err := s.CreateMembership(ctx, u, b)
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if m.UserID != u.ID || m.BoardID != b.ID {
		t.Errorf("membership: %+v", m)
	}
}

func TestTitleValidation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateBoard(ctx, alice, "   ")
	wantKind(t, err, apperr.InvalidArgument)

	// Markup-only titles are blank once stripped.
	_, err = s.CreateBoard(ctx, alice, "<script>x</script>")
	wantKind(t, err, apperr.InvalidArgument)

	_, err = s.CreateBoard(ctx, alice, strings.Repeat("a", MaxTitleLength+1))
	wantKind(t, err, apperr.InvalidArgument)

	if _, err := s.CreateBoard(ctx, alice, strings.Repeat("a", MaxTitleLength)); err != nil {
		t.Errorf("max-length title rejected: %v", err)
	}
}

func TestUnknownCaller(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")

	_, err := s.CreateBoard(ctx, "nobody@example.com", "B")
	wantKind(t, err, apperr.UserNotFound)
	_, err = s.ListBoards(ctx, "", paging.Request{Size: 10})
	wantKind(t, err, apperr.UserNotFound)
	_, err = s.CreateTask(ctx, "nobody@example.com", board.ID, "T")
	wantKind(t, err, apperr.UserNotFound)
	_, err = s.CreateItem(ctx, "nobody@example.com", task.ID, "I")
	wantKind(t, err, apperr.UserNotFound)

	// Soft-deleted users resolve as unknown.
	for _, u := range db.users {
		if u.Email == alice {
			now := db.tick()
			u.DeletedAt = &now
		}
	}
	_, err = s.ListTasks(ctx, alice, board.ID)
	wantKind(t, err, apperr.UserNotFound)
}

func TestResolutionOrder(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	missing := primitive.NewObjectID().Hex()

	// Every task and item operation resolves the caller first.
	_, err := s.UpdateTask(ctx, "nobody@example.com", missing, "x")
	wantKind(t, err, apperr.UserNotFound)
	err = s.DeleteTask(ctx, "nobody@example.com", "not-an-id")
	wantKind(t, err, apperr.UserNotFound)
	_, err = s.ToggleItem(ctx, "nobody@example.com", missing)
	wantKind(t, err, apperr.UserNotFound)
	_, err = s.CreateItem(ctx, "nobody@example.com", missing, "x")
	wantKind(t, err, apperr.UserNotFound)

	// A known caller then learns the entity is missing.
	_, err = s.UpdateTask(ctx, alice, missing, "x")
	wantKind(t, err, apperr.TaskNotFound)
	_, err = s.ToggleItem(ctx, alice, missing)
	wantKind(t, err, apperr.ItemNotFound)
	_, err = s.CreateItem(ctx, alice, missing, "x")
	wantKind(t, err, apperr.TaskNotFound)
}

func TestItemUnderDeletedTask_NonMemberSeesBoardNotFound(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "Private")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "I")
	item := v.Items[0]
	if err := s.DeleteTask(ctx, alice, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	// A live item under a live or deleted task answers the same to an
	// outsider.
	_, err := s.UpdateItem(ctx, bob, item.ID, "x")
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.ToggleItem(ctx, bob, item.ID)
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.DeleteItem(ctx, bob, item.ID)
	wantKind(t, err, apperr.BoardNotFound)

	// The owner sees the item as gone.
	_, err = s.ToggleItem(ctx, alice, item.ID)
	wantKind(t, err, apperr.ItemNotFound)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.UpdateBoard(ctx, alice, "not-an-id", "x")
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.ListTasks(ctx, alice, "123")
	wantKind(t, err, apperr.BoardNotFound)
	err = s.DeleteTask(ctx, alice, "zzz")
	wantKind(t, err, apperr.TaskNotFound)
	_, err = s.DeleteItem(ctx, alice, "")
	wantKind(t, err, apperr.ItemNotFound)
}

func TestAccessIsolation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "Private")
	task := mustTask(t, s, alice, board.ID, "Secret")
	v, err := s.CreateItem(ctx, alice, task.ID, "Hidden")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	item := v.Items[0]

	checks := []struct {
		name string
		call func() error
	}{
		{"UpdateBoard", func() error { _, err := s.UpdateBoard(ctx, bob, board.ID, "x"); return err }},
		{"DeleteBoard", func() error { _, err := s.DeleteBoard(ctx, bob, board.ID); return err }},
		{"CreateTask", func() error { _, err := s.CreateTask(ctx, bob, board.ID, "x"); return err }},
		{"ListTasks", func() error { _, err := s.ListTasks(ctx, bob, board.ID); return err }},
		{"UpdateTask", func() error { _, err := s.UpdateTask(ctx, bob, task.ID, "x"); return err }},
		{"ToggleTask", func() error { _, err := s.ToggleTask(ctx, bob, task.ID); return err }},
		{"DeleteTask", func() error { return s.DeleteTask(ctx, bob, task.ID) }},
		{"CreateItem", func() error { _, err := s.CreateItem(ctx, bob, task.ID, "x"); return err }},
		{"UpdateItem", func() error { _, err := s.UpdateItem(ctx, bob, item.ID, "x"); return err }},
		{"ToggleItem", func() error { _, err := s.ToggleItem(ctx, bob, item.ID); return err }},
		{"DeleteItem", func() error { _, err := s.DeleteItem(ctx, bob, item.ID); return err }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			wantKind(t, c.call(), apperr.BoardNotFound)
		})
	}

	page, err := s.ListBoards(ctx, bob, paging.Request{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if page.TotalElements != 0 || len(page.Content) != 0 {
		t.Errorf("bob must not see alice's board: %+v", page)
	}

	// Nothing changed for the owner.
	tasks, err := s.ListTasks(ctx, alice, board.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Secret" || tasks[0].Items[0].Title != "Hidden" {
		t.Errorf("owner view changed: %+v", tasks)
	}
}

func TestSharedBoardMembersAreEqual(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	c, err := s.CreateBoard(ctx, alice, "Shared")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	bobUser, _ := fakeUsers{db}.GetByEmail(ctx, bob)
	if _, err := s.CreateMembership(ctx, bobUser, &c.Board); err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}

	renamed, err := s.UpdateBoard(ctx, bob, c.Board.ID.Hex(), "Renamed by Bob")
	if err != nil {
		t.Fatalf("member rename: %v", err)
	}
	if renamed.Actor.Email != bob || renamed.Board.Title != "Renamed by Bob" {
		t.Errorf("got %+v", renamed)
	}
}

func TestSoftDeleteExclusion(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "Board")
	keep := mustTask(t, s, alice, board.ID, "Keep")
	drop := mustTask(t, s, alice, board.ID, "Drop")

	v, _ := s.CreateItem(ctx, alice, keep.ID, "a")
	v, _ = s.CreateItem(ctx, alice, keep.ID, "b")
	b := itemByTitle(t, v, "b")
	if _, err := s.DeleteItem(ctx, alice, b.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := s.DeleteTask(ctx, alice, drop.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	tasks, err := s.ListTasks(ctx, alice, board.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Fatalf("deleted task listed: %+v", tasks)
	}
	if len(tasks[0].Items) != 1 || tasks[0].Items[0].Title != "a" {
		t.Errorf("deleted item listed: %+v", tasks[0].Items)
	}

	// Deleted entities cannot be addressed again.
	err = s.DeleteTask(ctx, alice, drop.ID)
	wantKind(t, err, apperr.TaskNotFound)
	_, err = s.ToggleItem(ctx, alice, b.ID)
	wantKind(t, err, apperr.ItemNotFound)
	_, err = s.CreateItem(ctx, alice, drop.ID, "late")
	wantKind(t, err, apperr.TaskNotFound)
}

func TestDeletedAncestorsHideDescendants(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "Doomed")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "I")
	item := v.Items[0]

	other := mustBoard(t, s, alice, "Other")
	otherTask := mustTask(t, s, alice, other.ID, "T2")
	v, _ = s.CreateItem(ctx, alice, otherTask.ID, "I2")
	otherItem := v.Items[0]

	// Deleting a task hides its items even though they were not deleted.
	if err := s.DeleteTask(ctx, alice, otherTask.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	_, err := s.UpdateItem(ctx, alice, otherItem.ID, "x")
	wantKind(t, err, apperr.ItemNotFound)

	// Deleting a board hides its tasks and items.
	if _, err := s.DeleteBoard(ctx, alice, board.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	_, err = s.UpdateTask(ctx, alice, task.ID, "x")
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.ToggleItem(ctx, alice, item.ID)
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.ListTasks(ctx, alice, board.ID)
	wantKind(t, err, apperr.BoardNotFound)
	_, err = s.DeleteBoard(ctx, alice, board.ID)
	wantKind(t, err, apperr.BoardNotFound)

	page, _ := s.ListBoards(ctx, alice, paging.Request{Size: 10})
	if page.TotalElements != 1 || page.Content[0].ID != other.ID {
		t.Errorf("deleted board listed: %+v", page)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "I")

	for i := 0; i < 2; i++ {
		c, err := s.UpdateBoard(ctx, alice, board.ID, "Same")
		if err != nil || c.Board.Title != "Same" {
			t.Fatalf("UpdateBoard #%d: %+v %v", i, c, err)
		}
		tv, err := s.UpdateTask(ctx, alice, task.ID, "Same")
		if err != nil || tv.Title != "Same" {
			t.Fatalf("UpdateTask #%d: %+v %v", i, tv, err)
		}
		tv, err = s.UpdateItem(ctx, alice, v.Items[0].ID, "Same")
		if err != nil || tv.Items[0].Title != "Same" {
			t.Fatalf("UpdateItem #%d: %+v %v", i, tv, err)
		}
	}
	if len(db.boards) != 1 || len(db.tasks) != 1 || len(db.items) != 1 || len(db.memberships) != 1 {
		t.Errorf("rows multiplied: boards=%d tasks=%d items=%d memberships=%d",
			len(db.boards), len(db.tasks), len(db.items), len(db.memberships))
	}
}

func TestListBoards_Paging(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		mustBoard(t, s, alice, title)
	}
	mustBoard(t, s, bob, "bobs")

	page, err := s.ListBoards(ctx, alice, paging.Request{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if page.TotalElements != 3 || page.TotalPages != 2 || page.Last {
		t.Errorf("page meta: %+v", page)
	}
	if len(page.Content) != 2 || page.Content[0].Title != "three" || page.Content[1].Title != "two" {
		t.Errorf("newest first: %+v", page.Content)
	}

	page, err = s.ListBoards(ctx, alice, paging.Request{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Title != "one" || !page.Last {
		t.Errorf("second page: %+v", page)
	}

	_, err = s.ListBoards(ctx, alice, paging.Request{Page: -1, Size: 2})
	wantKind(t, err, apperr.InvalidArgument)
	_, err = s.ListBoards(ctx, alice, paging.Request{Page: 0, Size: 0})
	wantKind(t, err, apperr.InvalidArgument)
	_, err = s.ListBoards(ctx, alice, paging.Request{Page: int(paging.MaxPage(2)) + 1, Size: 2})
	wantKind(t, err, apperr.InvalidArgument)
}

func TestListTasks_NewestFirstWithItems(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	older := mustTask(t, s, alice, board.ID, "older")
	mustTask(t, s, alice, board.ID, "newer")
	if _, err := s.CreateItem(ctx, alice, older.ID, "x"); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	tasks, err := s.ListTasks(ctx, alice, board.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "newer" || tasks[1].Title != "older" {
		t.Fatalf("order: %+v", tasks)
	}
	if tasks[0].Items == nil || len(tasks[0].Items) != 0 {
		t.Errorf("empty item list must be non-nil: %+v", tasks[0])
	}
	if len(tasks[1].Items) != 1 {
		t.Errorf("items not embedded: %+v", tasks[1])
	}
}

func TestRecompute_InterleavedItemToggles(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")
	mustItem := func(title string) string {
		v, err := s.CreateItem(ctx, alice, task.ID, title)
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
		return itemByTitle(t, v, title).ID
	}
	one := mustItem("one")
	two := mustItem("two")
	if _, err := s.ToggleItem(ctx, alice, one); err != nil {
		t.Fatalf("ToggleItem(one): %v", err)
	}
	taskID, _ := primitive.ObjectIDFromHex(task.ID)

	// While our toggle of "two" is about to write completed=true, a second
	// request unchecks "one" and finishes its own recompute. Its recompute
	// sees completed=false already stored and writes nothing, so our write
	// must be the one that loses.
	fired := false
	db.casHook = func(id primitive.ObjectID) {
		if fired || id != taskID {
			return
		}
		fired = true
		if _, err := s.ToggleItem(ctx, alice, one); err != nil {
			t.Errorf("concurrent ToggleItem(one): %v", err)
		}
	}

	got, err := s.ToggleItem(ctx, alice, two)
	if err != nil {
		t.Fatalf("ToggleItem(two): %v", err)
	}
	if !fired {
		t.Fatal("hook did not fire")
	}

	db.mu.Lock()
	stored := db.tasks[taskID].Completed
	db.mu.Unlock()
	if stored {
		t.Error("stored completed=true while item one is unchecked")
	}
	if got.Completed {
		t.Error("view reports completed=true while item one is unchecked")
	}
	if itemByTitle(t, got, "one").ItemChecked || !itemByTitle(t, got, "two").ItemChecked {
		t.Errorf("view items: %+v", got.Items)
	}
}

func TestRecompute_ManualToggleDuringRecompute(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "only")
	taskID, _ := primitive.ObjectIDFromHex(task.ID)

	// A manual toggle does not touch the item set, so the derived write
	// still lands and the items win.
	db.casHook = func(id primitive.ObjectID) {
		db.mu.Lock()
		db.tasks[id].Completed = !db.tasks[id].Completed
		db.mu.Unlock()
	}

	got, err := s.ToggleItem(ctx, alice, v.Items[0].ID)
	if err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	if !got.Completed || !db.tasks[taskID].Completed {
		t.Errorf("completed: view=%v stored=%v, want true", got.Completed, db.tasks[taskID].Completed)
	}
}

func TestRecompute_GivesUpAfterRepeatedConflicts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db := newFakeDB()
	db.addUser(alice)
	s := New(db.stores(), zap.New(core))
	ctx := context.Background()

	board := mustBoard(t, s, alice, "B")
	task := mustTask(t, s, alice, board.ID, "T")
	v, _ := s.CreateItem(ctx, alice, task.ID, "only")

	// A competing writer flips the flag and the item, bumping items_rev,
	// before every write, so each attempt loses and the next read disagrees
	// again.
	db.casHook = func(id primitive.ObjectID) {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.tasks[id].Completed = !db.tasks[id].Completed
		db.tasks[id].ItemsRev++
		for _, it := range db.items {
			if it.TaskID == id {
				it.ItemChecked = !it.ItemChecked
			}
		}
	}
	before := db.casCalls

	if _, err := s.ToggleItem(ctx, alice, v.Items[0].ID); err != nil {
		t.Fatalf("ToggleItem: %v", err)
	}
	if n := db.casCalls - before; n != maxRecomputeAttempts {
		t.Errorf("write attempts: got %d, want %d", n, maxRecomputeAttempts)
	}
	if logs.FilterMessageSnippet("gave up").Len() != 1 {
		t.Error("expected a warning when recompute gives up")
	}
}
