// internal/app/features/search/routes.go
package search

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for tender search endpoints.
// Mounted under /api/search behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/tenders", h.HandleSearch)
	r.Get("/filters", h.ServeFilters)
	return r
}
