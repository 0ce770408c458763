package config

import (
	"context"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("UPSTREAM_URL", "https://api.example-commerce.test/api/v1")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("GCP_PROJECT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RateLimitPerSecond != 20 {
		t.Errorf("RateLimitPerSecond = %v, want 20", cfg.RateLimitPerSecond)
	}
	if cfg.IsProduction() {
		t.Error("development config should not report production")
	}
}

func TestLoad_MissingUpstreamURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPSTREAM_URL", "")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() should fail without UPSTREAM_URL")
	}
}

func TestLoad_DevSessionSecretDefault(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Secrets.SessionSecret == "" {
		t.Error("development mode should fall back to a default session secret")
	}
}

func TestLoad_ProductionRequiresProject(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() should fail in production without GCP_PROJECT")
	}
}

func TestValidate_ProductionSecretStrength(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Secrets: Secrets{
			UpstreamURL:   "https://api.example-commerce.test",
			SessionSecret: "short",
		},
	}

	if err := cfg.validate(); err == nil {
		t.Fatal("validate() should reject short session secret in production")
	}

	cfg.Secrets.SessionSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v, want nil for strong secret", err)
	}
}

func TestLoad_RateLimitOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitPerSecond != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit = %v/%d, want 5/10", cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}
}
