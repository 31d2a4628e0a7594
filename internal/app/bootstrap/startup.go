// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/tenderinsight/hub/internal/app/store/audit"
	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/store/tendermeta"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/ingest"
	"github.com/tenderinsight/hub/internal/app/system/ocds"
	"github.com/tenderinsight/hub/internal/app/system/tasks"
	"github.com/tenderinsight/hub/internal/app/system/workers"
	"go.uber.org/zap"
)

// staleJobThreshold is how long a summary job may sit in processing
// before the housekeeping sweep requeues it.
const staleJobThreshold = 10 * time.Minute

// services holds the long-lived pieces built during Startup and shared
// with BuildHandler and Shutdown.
var services struct {
	audit  *auditlog.Logger
	ocds   *ocds.Client
	ingest *ingest.Service
	syncer *workers.OCDSSync
	pool   *workers.SummaryPool
	runner *tasks.Runner
}

// Startup builds the shared services and starts the background workers:
// the periodic OCDS sync sweep, the summary job pool, and the
// housekeeping job runner.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	services.audit = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Ingest:    appCfg.AuditLogIngest,
		Workspace: appCfg.AuditLogWorkspace,
		API:       appCfg.AuditLogAPI,
	})

	tenders := tenderstore.New(deps.MongoDatabase)
	summaries := summarystore.New(deps.MongoDatabase)

	services.ocds = ocds.New(appCfg.OCDSBaseURL)
	services.ingest = ingest.New(services.ocds, tenders, metastore.New(deps.SQL), summaries, services.audit, logger)

	if appCfg.SyncEnabled {
		services.syncer = workers.NewOCDSSync(services.ingest, logger, appCfg.SyncInterval, appCfg.SyncLookback)
		services.syncer.Start()
	}

	services.pool = workers.NewSummaryPool(summaries, tenders, services.audit, logger,
		appCfg.SummaryWorkers, appCfg.SummaryPoll)
	services.pool.Start()

	services.runner = tasks.NewRunner(logger)
	services.runner.Add(tasks.StaleSummaryRequeueJob(summaries, logger, staleJobThreshold))
	services.runner.Start()

	return nil
}
