// internal/app/features/profiles/routes.go
package profiles

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for company profile endpoints.
// Mounted under /api/profile behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeGet)
	r.Put("/", h.HandleReplace)
	return r
}
