package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/domain/models"
)

// CreateMembership links user to board. Both must already be persisted.
// There is no way to remove a membership.
func (s *Service) CreateMembership(ctx context.Context, user *models.User, board *models.Board) (models.BoardMembership, error) {
	if user == nil || user.ID.IsZero() {
		return models.BoardMembership{}, apperr.Invalid("user", "User is required.")
	}
	if board == nil || board.ID.IsZero() {
		return models.BoardMembership{}, apperr.Invalid("board", "Board is required.")
	}
	m, err := s.memberships.Add(ctx, user.ID, board.ID)
	if err != nil {
		return models.BoardMembership{}, internal(err)
	}
	return m, nil
}
