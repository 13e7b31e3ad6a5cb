// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Model artifacts
	ModelPath   string // trained classifier artifact
	DatasetPath string // labeled dataset used by the accuracy endpoints

	// Audit
	AuditWriteTimeout time.Duration // bound on recording a blocked attempt

	// Security
	RateLimitRPM   int
	TrustedProxies string // comma-separated CIDRs, empty trusts none

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint, empty disables tracing
}

const (
	DefaultPort              = "8080"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultModelPath         = "artifacts/fraud_model.json"
	DefaultDatasetPath       = "data/fraud_dataset.csv"
	DefaultRateLimitRPM      = 300
	DefaultAuditWriteTimeout = 2 * time.Second
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		Env:               getEnv("ENV", DefaultEnv),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:       os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		ModelPath:         getEnv("MODEL_PATH", DefaultModelPath),
		DatasetPath:       getEnv("DATASET_PATH", DefaultDatasetPath),
		AuditWriteTimeout: getEnvDuration("AUDIT_WRITE_TIMEOUT", DefaultAuditWriteTimeout),
		RateLimitRPM:      int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimitRPM)),
		TrustedProxies:    os.Getenv("TRUSTED_PROXIES"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH must not be empty")
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	}
	if c.AuditWriteTimeout <= 0 {
		return fmt.Errorf("AUDIT_WRITE_TIMEOUT must be positive, got %s", c.AuditWriteTimeout)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
