// internal/app/features/workspace/routes.go
package workspace

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for workspace tracking endpoints.
// Mounted under /api/workspace behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleTrack)
	r.Get("/", h.ServeList)
	r.Patch("/{id}/status", h.HandleStatus)
	r.Post("/{id}/notes", h.HandleNote)
	r.Post("/{id}/tasks", h.HandleTask)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
