package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/domain/models"
)

// CreateItem adds an unchecked item to a task and returns the parent task.
func (s *Service) CreateItem(ctx context.Context, email, taskHex, title string) (TaskView, error) {
	task, err := s.taskAccess(ctx, email, taskHex)
	if err != nil {
		return TaskView{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return TaskView{}, err
	}
	if _, err := s.items.Create(ctx, models.Item{TaskID: task.ID, Title: title}); err != nil {
		return TaskView{}, internal(err)
	}
	return s.itemsChanged(ctx, task.ID)
}

// UpdateItem renames an item and returns the parent task. The checked state
// does not change, so completion is not recomputed.
func (s *Service) UpdateItem(ctx context.Context, email, itemHex, title string) (TaskView, error) {
	item, task, err := s.itemAccess(ctx, email, itemHex)
	if err != nil {
		return TaskView{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return TaskView{}, err
	}
	if _, err := s.items.UpdateTitle(ctx, item.ID, title); err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundItem)
	}
	return s.view(ctx, *task)
}

// ToggleItem flips an item's checked state and returns the recomputed
// parent task.
func (s *Service) ToggleItem(ctx context.Context, email, itemHex string) (TaskView, error) {
	item, task, err := s.itemAccess(ctx, email, itemHex)
	if err != nil {
		return TaskView{}, err
	}
	if _, err := s.items.ToggleChecked(ctx, item.ID); err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundItem)
	}
	return s.itemsChanged(ctx, task.ID)
}

// DeleteItem soft-deletes an item and returns the recomputed parent task.
func (s *Service) DeleteItem(ctx context.Context, email, itemHex string) (TaskView, error) {
	item, task, err := s.itemAccess(ctx, email, itemHex)
	if err != nil {
		return TaskView{}, err
	}
	if err := s.items.SoftDelete(ctx, item.ID); err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundItem)
	}
	return s.itemsChanged(ctx, task.ID)
}
