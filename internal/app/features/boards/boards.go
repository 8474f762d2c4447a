// internal/app/features/boards/boards.go
package boards

import (
	"net/http"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/features/shared"
	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/paging"
	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /board. The caller becomes the board's first
// member.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create board", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create board")
	defer cancel()
	ch, err := h.Planner.CreateBoard(ctx, email, in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "create board", err)
		return
	}
	h.Audit.BoardCreated(r.Context(), r, ch.Actor.ID, ch.Board.ID, ch.Board.Title)
	apierrors.WriteJSON(w, http.StatusOK, ch.View())
}

// ServeMine handles GET /board/me?page=&size=.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	req, problems := paging.Parse(r, h.PageSize, h.MaxPageSize)
	if len(problems) > 0 {
		h.ErrLog.Respond(w, r, "list boards", apperr.InvalidFields(problems))
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list boards")
	defer cancel()
	page, err := h.Planner.ListBoards(ctx, email, req)
	if err != nil {
		h.ErrLog.Respond(w, r, "list boards", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, page)
}

// HandleUpdate handles PATCH /board/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in shared.TitleInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update board", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update board")
	defer cancel()
	ch, err := h.Planner.UpdateBoard(ctx, email, chi.URLParam(r, "id"), in.Title)
	if err != nil {
		h.ErrLog.Respond(w, r, "update board", err)
		return
	}
	h.Audit.BoardUpdated(r.Context(), r, ch.Actor.ID, ch.Board.ID, ch.Board.Title)
	apierrors.WriteJSON(w, http.StatusOK, ch.View())
}

// HandleDelete handles DELETE /board/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete board")
	defer cancel()
	ch, err := h.Planner.DeleteBoard(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Respond(w, r, "delete board", err)
		return
	}
	h.Audit.BoardDeleted(r.Context(), r, ch.Actor.ID, ch.Board.ID)
	w.WriteHeader(http.StatusNoContent)
}
