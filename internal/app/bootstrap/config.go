// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the Tender Insight
// Hub. These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, postgres_dsn, etc.
//   - Environment variables: TENDERHUB_MONGO_URI, TENDERHUB_POSTGRES_DSN, etc.
//   - Command-line flags: --mongo_uri, --postgres_dsn, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tender_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "postgres_dsn", Default: "host=localhost user=postgres password=postgres dbname=tender_hub port=5432 sslmode=disable", Desc: "Postgres DSN for the tender metadata store"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for quotas and caching (blank disables both)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "minio_endpoint", Default: "", Desc: "MinIO endpoint for document storage (blank disables retention)"},
	{Name: "minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "minio_bucket", Default: "tender-documents", Desc: "MinIO bucket for uploaded documents"},
	{Name: "minio_use_ssl", Default: false, Desc: "Use TLS for the MinIO connection"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 secret for API bearer tokens (must be strong in production)"},

	{Name: "ocds_base_url", Default: "", Desc: "Upstream OCDS releases endpoint (blank uses the eTenders API)"},
	{Name: "sync_enabled", Default: true, Desc: "Run the periodic OCDS sync worker"},
	{Name: "sync_interval", Default: "6h", Desc: "Cadence of the OCDS sync sweep"},
	{Name: "sync_lookback", Default: "168h", Desc: "How far back each sync sweep reaches"},

	{Name: "summary_workers", Default: 2, Desc: "Summary job worker count"},
	{Name: "summary_poll", Default: "5s", Desc: "Summary queue poll interval"},

	// Audit routing: 'all' (db+log), 'db', 'log', or 'off'.
	{Name: "audit_log_ingest", Default: "log", Desc: "Ingestion event logging: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_log_workspace", Default: "all", Desc: "Workspace event logging: 'all', 'db', 'log', or 'off'"},
	{Name: "audit_log_api", Default: "db", Desc: "API event logging: 'all', 'db', 'log', or 'off'"},

	{Name: "rate_limit_requests", Default: 120, Desc: "Requests per window per client IP"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, TENDERHUB_* for app), and
// command-line flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TENDERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		PostgresDSN: appValues.String("postgres_dsn"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		MinioEndpoint:  appValues.String("minio_endpoint"),
		MinioAccessKey: appValues.String("minio_access_key"),
		MinioSecretKey: appValues.String("minio_secret_key"),
		MinioBucket:    appValues.String("minio_bucket"),
		MinioUseSSL:    appValues.Bool("minio_use_ssl"),

		JWTSecret: appValues.String("jwt_secret"),

		OCDSBaseURL:  appValues.String("ocds_base_url"),
		SyncEnabled:  appValues.Bool("sync_enabled"),
		SyncInterval: appValues.Duration("sync_interval", 6*time.Hour),
		SyncLookback: appValues.Duration("sync_lookback", 7*24*time.Hour),

		SummaryWorkers: appValues.Int("summary_workers"),
		SummaryPoll:    appValues.Duration("summary_poll", 5*time.Second),

		AuditLogIngest:    appValues.String("audit_log_ingest"),
		AuditLogWorkspace: appValues.String("audit_log_workspace"),
		AuditLogAPI:       appValues.String("audit_log_api"),

		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation, catching
// configuration errors before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.PostgresDSN == "" {
		return fmt.Errorf("postgres_dsn is required")
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be changed from the development default in production")
	}
	if appCfg.SummaryWorkers < 1 {
		return fmt.Errorf("summary_workers must be at least 1")
	}
	if appCfg.MinioEndpoint != "" && (appCfg.MinioAccessKey == "" || appCfg.MinioSecretKey == "") {
		return fmt.Errorf("minio_endpoint is set but minio_access_key/minio_secret_key are missing")
	}
	return nil
}
