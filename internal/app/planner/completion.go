package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxRecomputeAttempts bounds the conditional-write loop in recompute.
const maxRecomputeAttempts = 5

// Completed is the derivation rule for a task's completed flag: at least
// one live item, and every live item checked.
func Completed(items []models.Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if !it.ItemChecked {
			return false
		}
	}
	return true
}

// itemsChanged records a change to the task's item set or checked states
// and recomputes the task's completion. Every item create, toggle, and
// delete goes through here after its own write.
func (s *Service) itemsChanged(ctx context.Context, taskID primitive.ObjectID) (TaskView, error) {
	if _, err := s.tasks.BumpItemsRev(ctx, taskID); err != nil {
		return TaskView{}, notFoundOr(err, apperr.NotFoundTask)
	}
	task, items, err := s.recompute(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	return taskViewOf(*task, items), nil
}

// recompute reads the task, then its live items, and stores Completed(items)
// only while the task's items_rev is unchanged. An item change that lands
// after the read bumps items_rev, so the write loses and the loop re-reads.
// It returns the task and the item list the stored flag was derived from.
func (s *Service) recompute(ctx context.Context, taskID primitive.ObjectID) (*models.Task, []models.Item, error) {
	for attempt := 1; ; attempt++ {
		cur, err := s.tasks.GetLive(ctx, taskID)
		if err != nil {
			return nil, nil, notFoundOr(err, apperr.NotFoundTask)
		}
		items, err := s.items.ListLiveByTask(ctx, taskID)
		if err != nil {
			return nil, nil, internal(err)
		}
		want := Completed(items)
		if cur.Completed == want {
			return cur, items, nil
		}

		swapped, err := s.tasks.SetCompletedAtRev(ctx, taskID, cur.ItemsRev, want)
		if err != nil {
			return nil, nil, notFoundOr(err, apperr.NotFoundTask)
		}
		if swapped {
			cur.Completed = want
			return cur, items, nil
		}

		if attempt == maxRecomputeAttempts {
			// Whoever bumped items_rev last recomputes after us.
			s.log.Warn("task completion recompute gave up after repeated conflicts",
				zap.String("task_id", taskID.Hex()),
				zap.Int("attempts", attempt))
			return s.reread(ctx, taskID)
		}
	}
}

func (s *Service) reread(ctx context.Context, taskID primitive.ObjectID) (*models.Task, []models.Item, error) {
	cur, err := s.tasks.GetLive(ctx, taskID)
	if err != nil {
		return nil, nil, notFoundOr(err, apperr.NotFoundTask)
	}
	items, err := s.items.ListLiveByTask(ctx, taskID)
	if err != nil {
		return nil, nil, internal(err)
	}
	return cur, items, nil
}
