// internal/app/features/items/items.go
package items

import (
	"net/http"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/features/shared"
	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /item/{id}, where id is the task.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create item", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create item")
	defer cancel()
	v, err := h.Planner.CreateItem(ctx, email, chi.URLParam(r, "id"), in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "create item", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// HandleUpdate handles PATCH /item/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update item", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update item")
	defer cancel()
	v, err := h.Planner.UpdateItem(ctx, email, chi.URLParam(r, "id"), in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "update item", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// HandleToggle handles PATCH /item/toggle/{id}.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "toggle item")
	defer cancel()
	v, err := h.Planner.ToggleItem(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "toggle item", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}

// HandleDelete handles DELETE /item/{id}. Unlike the other deletes it
// answers 200 with the parent task so clients can redraw it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete item")
	defer cancel()
	v, err := h.Planner.DeleteItem(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "delete item", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, v)
}
