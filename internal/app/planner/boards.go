package planner

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/paging"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateBoard creates a board and the caller's membership on it in one unit
// of work.
func (s *Service) CreateBoard(ctx context.Context, email, title string) (BoardChange, error) {
	user, err := s.resolveCaller(ctx, email)
	if err != nil {
		return BoardChange{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return BoardChange{}, err
	}

	var created models.Board
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		b, err := s.boards.Create(ctx, models.Board{ID: primitive.NewObjectID(), Title: title})
		if err != nil {
			return internal(err)
		}
		if _, err := s.CreateMembership(ctx, user, &b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return BoardChange{}, asAppErr(err)
	}

	s.log.Debug("board created",
		zap.String("board_id", created.ID.Hex()),
		zap.String("user_id", user.ID.Hex()))
	return BoardChange{Actor: *user, Board: created}, nil
}

// ListBoards returns one page of the caller's live boards, newest first.
func (s *Service) ListBoards(ctx context.Context, email string, req paging.Request) (paging.Page[BoardView], error) {
	user, err := s.resolveCaller(ctx, email)
	if err != nil {
		return paging.Page[BoardView]{}, err
	}
	if req.Page < 0 {
		return paging.Page[BoardView]{}, apperr.Invalid("page", "Page must not be negative.")
	}
	if req.Size <= 0 {
		return paging.Page[BoardView]{}, apperr.Invalid("size", "Size must be greater than zero.")
	}
	if !req.InRange() {
		return paging.Page[BoardView]{}, apperr.Invalid("page", "Page is too large.")
	}

	ids, err := s.memberships.BoardIDsForUser(ctx, user.ID)
	if err != nil {
		return paging.Page[BoardView]{}, internal(err)
	}
	rows, total, err := s.boards.ListLive(ctx, ids, req.Skip(), req.Limit())
	if err != nil {
		return paging.Page[BoardView]{}, internal(err)
	}
	return paging.Map(paging.NewPage(rows, req, total), BoardViewOf), nil
}

// UpdateBoard renames a board the caller can access.
func (s *Service) UpdateBoard(ctx context.Context, email, boardHex, title string) (BoardChange, error) {
	user, board, err := s.boardAccess(ctx, email, boardHex)
	if err != nil {
		return BoardChange{}, err
	}
	title, err = cleanTitle(title)
	if err != nil {
		return BoardChange{}, err
	}
	updated, err := s.boards.UpdateTitle(ctx, board.ID, title)
	if err != nil {
		return BoardChange{}, notFoundOr(err, apperr.NotFoundBoard)
	}
	return BoardChange{Actor: *user, Board: *updated}, nil
}

// DeleteBoard soft-deletes a board the caller can access. Its tasks keep
// their own deleted_at; they become unreachable because every task and item
// access re-checks the board.
func (s *Service) DeleteBoard(ctx context.Context, email, boardHex string) (BoardChange, error) {
	user, board, err := s.boardAccess(ctx, email, boardHex)
	if err != nil {
		return BoardChange{}, err
	}
	if err := s.boards.SoftDelete(ctx, board.ID); err != nil {
		return BoardChange{}, notFoundOr(err, apperr.NotFoundBoard)
	}
	return BoardChange{Actor: *user, Board: *board}, nil
}
