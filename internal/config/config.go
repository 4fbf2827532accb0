// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the client.
package config

import (
	"fmt"
	"os"
)

// Config holds all configuration values loaded from the environment.
type Config struct {
	// API endpoint
	BaseURL string
	Env     string // "development", "production", "testing"

	// Bearer token storage ("" means the per-user default path)
	TokenPath string

	// Valkey (Redis-compatible snapshot cache); optional
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Prometheus exposition address; "" disables the endpoint
	MetricsAddr string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL: envOrDefault("BLOG_API_URL", "http://localhost:8001"),
		Env:     envOrDefault("APP_ENV", "development"),

		TokenPath: os.Getenv("BLOG_TOKEN_PATH"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if cfg.Env == "production" && cfg.BaseURL == "http://localhost:8001" {
		return nil, fmt.Errorf("BLOG_API_URL must be set in production")
	}

	return cfg, nil
}

// ValkeyAddr returns the cache address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// CacheEnabled reports whether a snapshot cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// IsDev returns true if the client is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
