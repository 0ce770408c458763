// Package config handles loading and validation of gateway configuration.
// Supports both development (.env / env vars) and production (Secret
// Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
)

// Config holds all gateway configuration.
// Environment determines whether secrets load from env vars (development)
// or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	GatewayID  string // Secret Manager secret name holding Secrets

	// Per-IP rate limiting for the public API
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Secrets (env vars in development, Secret Manager JSON in production)
	Secrets Secrets
}

// Secrets contains the values that must never appear in source or flags:
// the upstream commerce API location/key and the cookie signing secret.
type Secrets struct {
	UpstreamURL    string `json:"upstream_url"`
	UpstreamAPIKey string `json:"upstream_api_key,omitempty"`
	SessionSecret  string `json:"session_secret"`
}

// Load reads configuration from the environment, optionally seeded from a
// .env file, then from Secret Manager when ENVIRONMENT=production.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:               envOrDefault("PORT", "8080"),
		Environment:        envOrDefault("ENVIRONMENT", "development"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		GCPProject:         os.Getenv("GCP_PROJECT"),
		GatewayID:          envOrDefault("GATEWAY_ID", "storefront-gateway"),
		RateLimitPerSecond: envFloatOrDefault("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     envIntOrDefault("RATE_LIMIT_BURST", 40),
	}

	var err error
	if cfg.IsProduction() {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// loadFromSecretManager fetches secrets from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{gateway_id}/versions/latest
// with a JSON payload matching the Secrets struct.
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.GatewayID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Secrets); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads secrets from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Secrets = Secrets{
		UpstreamURL:    os.Getenv("UPSTREAM_URL"),
		UpstreamAPIKey: os.Getenv("UPSTREAM_API_KEY"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
	}

	if c.Secrets.SessionSecret == "" {
		c.Secrets.SessionSecret = "dev-secret-not-for-production"
		slog.Warn("using default SESSION_SECRET for development")
	}

	return nil
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Secrets.UpstreamURL == "" {
		return fmt.Errorf("upstream_url is required")
	}
	if _, err := url.Parse(c.Secrets.UpstreamURL); err != nil {
		return fmt.Errorf("invalid upstream_url: %w", err)
	}

	if c.IsProduction() {
		if c.Secrets.SessionSecret == "" {
			return fmt.Errorf("session_secret must be set in production")
		}
		if len(c.Secrets.SessionSecret) < 32 {
			return fmt.Errorf("session_secret must be at least 32 characters in production (got %d)", len(c.Secrets.SessionSecret))
		}
	}

	return nil
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
