// internal/app/features/analytics/routes.go
package analytics

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for spend analytics endpoints.
// Mounted under /api/analytics behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/spend-by-buyer", h.ServeSpendByBuyer)
	r.Get("/spend-by-province", h.ServeSpendByProvince)
	r.Get("/tender-trends", h.ServeTrends)
	r.Get("/enriched-releases", h.ServeEnrichedReleases)
	return r
}
