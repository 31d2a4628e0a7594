// internal/app/features/documents/routes.go
package documents

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for document summarization endpoints.
// Mounted under /api/summary behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/extract", h.HandleExtract)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	return r
}
