// internal/app/features/tenders/routes.go
package tenders

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the ingested tender corpus.
// Mounted under /api/tenders behind the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/ingest", h.HandleIngest)
	r.Post("/sync", h.HandleSync)
	r.Get("/export", h.HandleExport)
	r.Get("/{tender_id}", h.ServeGetTender)
	return r
}

// OCDSRoutes returns a subrouter for the upstream pass-through.
// Mounted under /api/OCDSReleases behind the auth middleware.
func OCDSRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeOCDSReleases)
	r.Get("/{ocid}", h.ServeOCDSRelease)
	return r
}
