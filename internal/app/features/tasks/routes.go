// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Routes mounts under /task. POST and GET take a board id; the rest take
// a task id.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}", h.HandleCreate)
	r.Get("/{id}", h.ServeList)
	r.Patch("/toggle/{id}", h.HandleToggle)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
