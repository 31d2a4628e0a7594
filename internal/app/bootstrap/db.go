// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/tenderinsight/hub/internal/app/store/tendermeta"
	"github.com/tenderinsight/hub/internal/app/system/indexes"
	"go.uber.org/zap"
)

// EnsureSchema creates the Mongo indexes and migrates the Postgres
// metadata table. Both operations are idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensuring mongo indexes failed", zap.Error(err))
		return err
	}
	if err := metastore.New(deps.SQL).Migrate(); err != nil {
		logger.Error("migrating tender metadata table failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}
