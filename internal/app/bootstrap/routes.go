// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	analyticsfeature "github.com/tenderinsight/hub/internal/app/features/analytics"
	documentsfeature "github.com/tenderinsight/hub/internal/app/features/documents"
	healthfeature "github.com/tenderinsight/hub/internal/app/features/health"
	profilesfeature "github.com/tenderinsight/hub/internal/app/features/profiles"
	readinessfeature "github.com/tenderinsight/hub/internal/app/features/readiness"
	searchfeature "github.com/tenderinsight/hub/internal/app/features/search"
	tendersfeature "github.com/tenderinsight/hub/internal/app/features/tenders"
	workspacefeature "github.com/tenderinsight/hub/internal/app/features/workspace"
	"github.com/tenderinsight/hub/internal/app/store/profiles"
	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/store/teams"
	"github.com/tenderinsight/hub/internal/app/store/tendermeta"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/store/workspace"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/cache"
	"github.com/tenderinsight/hub/internal/app/system/gates"
	"github.com/tenderinsight/hub/internal/app/system/plans"
	"github.com/tenderinsight/hub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the Tender Insight
// Hub API.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed, so the shared services (audit logger,
// ingest pipeline, OCDS client) already exist.
//
// /health is public; everything under /api requires a bearer token and
// passes through the per-IP rate limiter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tenders := tenderstore.New(deps.MongoDatabase)
	profiles := profilestore.New(deps.MongoDatabase)
	scores := readinessstore.New(deps.MongoDatabase)
	items := workspacestore.New(deps.MongoDatabase)
	summaries := summarystore.New(deps.MongoDatabase)
	teams := teamstore.New(deps.MongoDatabase)
	meta := metastore.New(deps.SQL)

	gatekeeper := gates.New(teams, plans.NewGate(deps.Redis), services.audit, logger)
	c := cache.New(deps.Redis)
	verifier := auth.NewVerifier(appCfg.JWTSecret, logger)
	limiter := ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(limiter.Middleware)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.SQL, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		api.Use(verifier.Middleware)

		tendersHandler := tendersfeature.NewHandler(tenders, services.ocds, services.ingest, gatekeeper, services.audit, logger)
		api.Mount("/tenders", tendersfeature.Routes(tendersHandler))
		api.Mount("/OCDSReleases", tendersfeature.OCDSRoutes(tendersHandler))

		searchHandler := searchfeature.NewHandler(meta, tenders, gatekeeper, c, logger)
		api.Mount("/search", searchfeature.Routes(searchHandler))

		profilesHandler := profilesfeature.NewHandler(profiles, logger)
		api.Mount("/profile", profilesfeature.Routes(profilesHandler))

		readinessHandler := readinessfeature.NewHandler(tenders, profiles, scores, services.audit, logger)
		api.Mount("/readiness", readinessfeature.Routes(readinessHandler))

		documentsHandler := documentsfeature.NewHandler(summaries, deps.Blobs, gatekeeper, services.audit, logger)
		api.Mount("/summary", documentsfeature.Routes(documentsHandler))

		workspaceHandler := workspacefeature.NewHandler(items, tenders, scores, services.audit, logger)
		api.Mount("/workspace", workspacefeature.Routes(workspaceHandler))

		analyticsHandler := analyticsfeature.NewHandler(tenders, scores, c, logger)
		api.Mount("/analytics", analyticsfeature.Routes(analyticsHandler))
	})

	return r, nil
}
