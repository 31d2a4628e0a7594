package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Mongo *mongo.Client
	SQL   *gorm.DB
	Redis *redis.Client
	Log   *zap.Logger
}

// NewHandler constructs a health Handler over all three backing stores.
func NewHandler(mongoClient *mongo.Client, sqlDB *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Mongo: mongoClient,
		SQL:   sqlDB,
		Redis: rdb,
		Log:   logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Mongo    string `json:"mongo"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "mongo":"connected", "postgres":"connected", "redis":"connected" }
//
// Any failed dependency flips status to "error" and the response to 503.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Mongo:    "connected",
		Postgres: "connected",
		Redis:    "connected",
	}

	if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Mongo = "disconnected"
		resp.Error = err.Error()
	}

	if err := h.pingPostgres(ctx); err != nil {
		h.Log.Error("health-check: postgres ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Postgres = "disconnected"
		resp.Error = err.Error()
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			h.Log.Error("health-check: redis ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Redis = "disconnected"
			resp.Error = err.Error()
		}
	} else {
		resp.Redis = "not configured"
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) pingPostgres(ctx context.Context) error {
	sqlDB, err := h.SQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
