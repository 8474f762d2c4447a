// internal/app/features/boards/handler.go
package boards

import (
	"context"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/planner"
	"github.com/dalemusser/taskplanner/internal/app/system/auditlog"
	"github.com/dalemusser/taskplanner/internal/app/system/paging"
	"go.uber.org/zap"
)

// Planner is the part of the planner service the board handlers use.
type Planner interface {
	CreateBoard(ctx context.Context, email, title string) (planner.BoardChange, error)
	ListBoards(ctx context.Context, email string, req paging.Request) (paging.Page[planner.BoardView], error)
	UpdateBoard(ctx context.Context, email, boardHex, title string) (planner.BoardChange, error)
	DeleteBoard(ctx context.Context, email, boardHex string) (planner.BoardChange, error)
}

// Handler owns the /board endpoints.
type Handler struct {
	Planner     Planner
	Audit       *auditlog.Logger
	PageSize    int
	MaxPageSize int
	Log         *zap.Logger
	ErrLog      *apierrors.ErrorLogger
}

// NewHandler constructs a Handler. Zero page sizes fall back to the paging
// defaults.
func NewHandler(p Planner, audit *auditlog.Logger, pageSize, maxPageSize int, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Planner:     p,
		Audit:       audit,
		PageSize:    pageSize,
		MaxPageSize: maxPageSize,
		Log:         logger,
		ErrLog:      errLog,
	}
}
