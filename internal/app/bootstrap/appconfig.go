// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// the Tender Insight Hub: store connection strings, the upstream OCDS
// endpoint, worker cadence, plan-gating backends, and audit routing.
type AppConfig struct {
	// MongoDB: the unstructured store (tenders, profiles, workspaces,
	// readiness scores, summaries, audit events).
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Postgres: the structured store (tender metadata used by search).
	PostgresDSN string

	// Redis: weekly quota counters and best-effort caching. Optional;
	// without it quotas are not enforced and caches are no-ops.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MinIO: blob storage for uploaded tender documents. Optional;
	// without it uploads are summarized but not retained.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// JWTSecret signs and verifies API bearer tokens (HS256).
	JWTSecret string

	// Upstream OCDS API.
	OCDSBaseURL string

	// Background ingestion sweep cadence and how far back each sweep
	// reaches.
	SyncEnabled  bool
	SyncInterval time.Duration
	SyncLookback time.Duration

	// Summary job worker pool.
	SummaryWorkers int
	SummaryPoll    time.Duration

	// Audit event routing per category: "all" (db+log), "db", "log",
	// or "off".
	AuditLogIngest    string
	AuditLogWorkspace string
	AuditLogAPI       string

	// Public API rate limit: requests per window per client IP.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}
