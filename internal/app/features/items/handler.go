// internal/app/features/items/handler.go
package items

import (
	"context"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/planner"
	"go.uber.org/zap"
)

// Planner is the part of the planner service the item handlers use. Every
// operation answers with the parent task.
type Planner interface {
	CreateItem(ctx context.Context, email, taskHex, title string) (planner.TaskView, error)
	UpdateItem(ctx context.Context, email, itemHex, title string) (planner.TaskView, error)
	ToggleItem(ctx context.Context, email, itemHex string) (planner.TaskView, error)
	DeleteItem(ctx context.Context, email, itemHex string) (planner.TaskView, error)
}

// Handler owns the /item endpoints.
type Handler struct {
	Planner Planner
	Log     *zap.Logger
	ErrLog  *apierrors.ErrorLogger
}

func NewHandler(p Planner, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Planner: p, Log: logger, ErrLog: errLog}
}
