// internal/app/features/tasks/handler.go
package tasks

import (
	"context"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/planner"
	"go.uber.org/zap"
)

// Planner is the part of the planner service the task handlers use.
type Planner interface {
	CreateTask(ctx context.Context, email, boardHex, title string) (planner.TaskView, error)
	ListTasks(ctx context.Context, email, boardHex string) ([]planner.TaskView, error)
	UpdateTask(ctx context.Context, email, taskHex, title string) (planner.TaskView, error)
	ToggleTask(ctx context.Context, email, taskHex string) (planner.TaskView, error)
	DeleteTask(ctx context.Context, email, taskHex string) error
}

// Handler owns the /task endpoints.
type Handler struct {
	Planner Planner
	Log     *zap.Logger
	ErrLog  *apierrors.ErrorLogger
}

func NewHandler(p Planner, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Planner: p, Log: logger, ErrLog: errLog}
}
