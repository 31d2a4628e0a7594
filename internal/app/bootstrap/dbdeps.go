// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-redis/redis/v8"
	"github.com/tenderinsight/hub/internal/app/system/blobstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DBDeps holds the backing-store clients for the app. Mongo and
// Postgres are required; Redis and MinIO are optional and nil when not
// configured.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	SQL           *gorm.DB
	Redis         *redis.Client
	Blobs         *blobstore.Store
}

// ConnectDB establishes connections to all configured backends.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	mongoOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	sqlDB, err := gorm.Open(postgres.Open(appCfg.PostgresDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect postgres: %w", err)
	}
	deps.SQL = sqlDB
	logger.Info("connected to Postgres")

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return DBDeps{}, fmt.Errorf("ping redis: %w", err)
		}
		deps.Redis = rdb
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	} else {
		logger.Warn("redis not configured; search quotas are not enforced")
	}

	if appCfg.MinioEndpoint != "" {
		blobs, err := blobstore.New(ctx, appCfg.MinioEndpoint,
			appCfg.MinioAccessKey, appCfg.MinioSecretKey,
			appCfg.MinioBucket, appCfg.MinioUseSSL)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect minio: %w", err)
		}
		deps.Blobs = blobs
		logger.Info("connected to MinIO", zap.String("bucket", appCfg.MinioBucket))
	} else {
		logger.Warn("minio not configured; uploaded documents are not retained")
	}

	return deps, nil
}
