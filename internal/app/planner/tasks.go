package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// view loads the live items of t and renders it.
func (s *Service) view(ctx context.Context, t models.Task) (TaskView, error) {
	items, err := s.items.ListLiveByTask(ctx, t.ID)
	if err != nil {
		return TaskView{}, internal(err)
	}
	return taskViewOf(t, items), nil
}

// CreateTask adds an incomplete task to a board the caller can access.
func (s *Service) CreateTask(ctx context.Context, email, boardHex, title string) (TaskView, error) {
	_, board, err := s.boardAccess(ctx, email, boardHex)
	if err != nil {
		return TaskView{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return TaskView{}, err
	}
	t, err := s.tasks.Create(ctx, models.Task{BoardID: board.ID, Title: title})
	if err != nil {
		return TaskView{}, internal(err)
	}
	return taskViewOf(t, nil), nil
}

// ListTasks returns the live tasks of a board, newest first, each with its
// live items.
func (s *Service) ListTasks(ctx context.Context, email, boardHex string) ([]TaskView, error) {
	_, board, err := s.boardAccess(ctx, email, boardHex)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListLiveByBoard(ctx, board.ID)
	if err != nil {
		return nil, internal(err)
	}
	ids := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	byTask, err := s.items.ListLiveByTasks(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskViewOf(t, byTask[t.ID]))
	}
	return out, nil
}

// UpdateTask renames a task. Completion is untouched.
func (s *Service) UpdateTask(ctx context.Context, email, taskHex, title string) (TaskView, error) {
	task, err := s.taskAccess(ctx, email, taskHex)
	if err != nil {
		return TaskView{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return TaskView{}, err
	}
	updated, err := s.tasks.UpdateTitle(ctx, task.ID, title)
	if err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundTask)
	}
	return s.view(ctx, *updated)
}

// ToggleTask flips the completed flag regardless of item state. The manual
// value holds until the next item create, toggle, or delete recomputes it.
func (s *Service) ToggleTask(ctx context.Context, email, taskHex string) (TaskView, error) {
	task, err := s.taskAccess(ctx, email, taskHex)
	if err != nil {
		return TaskView{}, err
	}
	toggled, err := s.tasks.ToggleCompleted(ctx, task.ID)
	if err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundTask)
	}
	return s.view(ctx, *toggled)
}

// DeleteTask soft-deletes a task. Its items stay as they are and become
// unreachable through the task check in item access.
func (s *Service) DeleteTask(ctx context.Context, email, taskHex string) error {
	task, err := s.taskAccess(ctx, email, taskHex)
	if err != nil {
		return err
	}
	if err := s.tasks.SoftDelete(ctx, task.ID); err != nil {
		return notFoundOr(err, apperr.NotFoundTask)
	}
	return nil
}
