// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background workers and tears down store
// connections. Workers stop first so nothing writes during the
// disconnects.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if services.syncer != nil {
		services.syncer.Stop()
	}
	if services.pool != nil {
		services.pool.Stop()
	}
	if services.runner != nil {
		services.runner.Stop()
	}

	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if deps.SQL != nil {
		if sqlDB, err := deps.SQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("postgres close failed", zap.Error(err))
			}
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
