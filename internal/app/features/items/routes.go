// internal/app/features/items/routes.go
package items

import "github.com/go-chi/chi/v5"

// Routes mounts under /item. POST takes a task id; the rest take an item id.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}", h.HandleCreate)
	r.Patch("/toggle/{id}", h.HandleToggle)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
