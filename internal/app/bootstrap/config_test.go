package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "tender_hub",
		PostgresDSN:    "host=localhost user=postgres dbname=tender_hub",
		JWTSecret:      "test-secret-0123456789",
		SummaryWorkers: 2,
		SummaryPoll:    5 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	logger := zap.NewNop()
	core := &config.CoreConfig{Env: "dev"}

	if err := ValidateConfig(core, validAppConfig(), logger); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "not-a-uri" }},
		{"missing postgres dsn", func(c *AppConfig) { c.PostgresDSN = "" }},
		{"missing jwt secret", func(c *AppConfig) { c.JWTSecret = "" }},
		{"zero summary workers", func(c *AppConfig) { c.SummaryWorkers = 0 }},
		{"minio without credentials", func(c *AppConfig) { c.MinioEndpoint = "localhost:9000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			if err := ValidateConfig(core, cfg, logger); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateConfig_ProdRejectsDevSecret(t *testing.T) {
	cfg := validAppConfig()
	cfg.JWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, zap.NewNop()); err != nil {
		t.Fatalf("dev env rejected default secret: %v", err)
	}
	if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, zap.NewNop()); err == nil {
		t.Error("prod env accepted the development default secret")
	}
}
