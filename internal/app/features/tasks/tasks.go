// internal/app/features/tasks/tasks.go
package tasks

import (
	"net/http"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/features/shared"
	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /task/{id}, where id is the board.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create task", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create task")
	defer cancel()
	v, err := h.Planner.CreateTask(ctx, email, chi.URLParam(r, "id"), in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "create task", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// ServeList handles GET /task/{id}, where id is the board.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list tasks")
	defer cancel()
	list, err := h.Planner.ListTasks(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list tasks", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, list)
}

// HandleUpdate handles PATCH /task/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update task", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update task")
	defer cancel()
	v, err := h.Planner.UpdateTask(ctx, email, chi.URLParam(r, "id"), in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "update task", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// HandleToggle handles PATCH /task/toggle/{id}. It flips the completed flag
// regardless of item state.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "toggle task")
	defer cancel()
	v, err := h.Planner.ToggleTask(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "toggle task", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// HandleDelete handles DELETE /task/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete task")
	defer cancel()
	if err := h.Planner.DeleteTask(ctx, email, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Respond(w, r, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
