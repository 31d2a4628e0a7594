// internal/app/features/readiness/routes.go
package readiness

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for readiness scoring endpoints.
// Mounted under /api/readiness behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/check", h.HandleCheck)
	r.Get("/{tender_id}", h.ServeGet)
	return r
}
