package planner

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// internal wraps an unclassified store failure.
func internal(err error) error {
	return apperr.Wrap(apperr.Internal, apperr.MsgInternal, err)
}

// notFoundOr maps mongo.ErrNoDocuments to nf and everything else to Internal.
func notFoundOr(err error, nf func() *apperr.Error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nf()
	}
	return internal(err)
}

// parseID turns a path id into an ObjectID. A malformed id is reported as
// the matching not-found kind so parse errors never reach the client.
func parseID(hex string, nf func() *apperr.Error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, nf()
	}
	return id, nil
}

// resolveCaller loads the live user behind the caller identity.
func (s *Service) resolveCaller(ctx context.Context, email string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperr.NotFoundUser()
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, apperr.NotFoundUser)
	}
	return u, nil
}

// accessibleBoard returns the board if it is live and the user holds a live
// membership on it. Missing, deleted, and foreign boards all look the same.
func (s *Service) accessibleBoard(ctx context.Context, user *models.User, boardID primitive.ObjectID) (*models.Board, error) {
	ok, err := s.memberships.Exists(ctx, user.ID, boardID)
	if err != nil {
		return nil, internal(err)
	}
	if !ok {
		return nil, apperr.NotFoundBoard()
	}
	b, err := s.boards.GetLive(ctx, boardID)
	if err != nil {
		return nil, notFoundOr(err, apperr.NotFoundBoard)
	}
	return b, nil
}

// boardAccess resolves caller then board.
func (s *Service) boardAccess(ctx context.Context, email, boardHex string) (*models.User, *models.Board, error) {
	user, err := s.resolveCaller(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	boardID, err := parseID(boardHex, apperr.NotFoundBoard)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.accessibleBoard(ctx, user, boardID)
	if err != nil {
		return nil, nil, err
	}
	return user, b, nil
}

// taskAccess resolves caller, task, then the task's board.
func (s *Service) taskAccess(ctx context.Context, email, taskHex string) (*models.Task, error) {
	user, err := s.resolveCaller(ctx, email)
	if err != nil {
		return nil, err
	}
	taskID, err := parseID(taskHex, apperr.NotFoundTask)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetLive(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, apperr.NotFoundTask)
	}
	if _, err := s.accessibleBoard(ctx, user, task.BoardID); err != nil {
		return nil, err
	}
	return task, nil
}

// itemAccess resolves caller, item, the item's task, and the task's board.
// The board gate runs before the task's deleted state is consulted, so a
// non-member learns nothing past the item id. For a member, an item whose
// task was deleted is itself treated as gone.
func (s *Service) itemAccess(ctx context.Context, email, itemHex string) (*models.Item, *models.Task, error) {
	user, err := s.resolveCaller(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	itemID, err := parseID(itemHex, apperr.NotFoundItem)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.items.GetLive(ctx, itemID)
	if err != nil {
		return nil, nil, notFoundOr(err, apperr.NotFoundItem)
	}
	task, err := s.tasks.Get(ctx, item.TaskID)
	if err != nil {
		return nil, nil, notFoundOr(err, apperr.NotFoundItem)
	}
	if _, err := s.accessibleBoard(ctx, user, task.BoardID); err != nil {
		return nil, nil, err
	}
	if task.DeletedAt != nil {
		return nil, nil, apperr.NotFoundItem()
	}
	return item, task, nil
}
