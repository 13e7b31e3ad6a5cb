package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "MODEL_PATH", "DATASET_PATH", "RATE_LIMIT_RPM", "AUDIT_WRITE_TIMEOUT"} {
		setEnv(t, key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, DefaultDatasetPath, cfg.DatasetPath)
	assert.Equal(t, DefaultRateLimitRPM, cfg.RateLimitRPM)
	assert.Equal(t, DefaultAuditWriteTimeout, cfg.AuditWriteTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "MODEL_PATH", "/opt/models/fraud.json")
	setEnv(t, "RATE_LIMIT_RPM", "60")
	setEnv(t, "AUDIT_WRITE_TIMEOUT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/opt/models/fraud.json", cfg.ModelPath)
	assert.Equal(t, 60, cfg.RateLimitRPM)
	assert.Equal(t, 500*time.Millisecond, cfg.AuditWriteTimeout)
}

func TestLoad_BadNumericFallsBackToDefault(t *testing.T) {
	setEnv(t, "RATE_LIMIT_RPM", "not-a-number")
	setEnv(t, "AUDIT_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimitRPM, cfg.RateLimitRPM)
	assert.Equal(t, DefaultAuditWriteTimeout, cfg.AuditWriteTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid",
			config: Config{
				Port:              "8080",
				ModelPath:         "m.json",
				RateLimitRPM:      10,
				AuditWriteTimeout: time.Second,
			},
		},
		{
			name: "empty port",
			config: Config{
				ModelPath:         "m.json",
				RateLimitRPM:      10,
				AuditWriteTimeout: time.Second,
			},
			wantErr: "PORT",
		},
		{
			name: "empty model path",
			config: Config{
				Port:              "8080",
				RateLimitRPM:      10,
				AuditWriteTimeout: time.Second,
			},
			wantErr: "MODEL_PATH",
		},
		{
			name: "zero rate limit",
			config: Config{
				Port:              "8080",
				ModelPath:         "m.json",
				AuditWriteTimeout: time.Second,
			},
			wantErr: "RATE_LIMIT_RPM",
		},
		{
			name: "negative audit timeout",
			config: Config{
				Port:              "8080",
				ModelPath:         "m.json",
				RateLimitRPM:      10,
				AuditWriteTimeout: -time.Second,
			},
			wantErr: "AUDIT_WRITE_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvModes(t *testing.T) {
	assert.True(t, (&Config{Env: "development"}).IsDevelopment())
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.False(t, (&Config{Env: "staging"}).IsProduction())
}
