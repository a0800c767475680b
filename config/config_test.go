package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.NotEmpty(t, cfg.Session.FilePath)
	assert.Equal(t, 300, cfg.Cache.UserTTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "10")
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api/v1", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.IsDevelopment())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		API:     APIConfig{BaseURL: "http://localhost:8000/api/v1", Timeout: 30 * time.Second},
		Session: SessionConfig{FilePath: "/tmp/session.json"},
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(cfg *Config) { cfg.API.BaseURL = "" },
			wantErr: "API_BASE_URL",
		},
		{
			name:    "non-http base url",
			mutate:  func(cfg *Config) { cfg.API.BaseURL = "ftp://example.com" },
			wantErr: "http(s)",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.API.Timeout = 0 },
			wantErr: "HTTP_TIMEOUT_SECONDS",
		},
		{
			name:    "missing session file",
			mutate:  func(cfg *Config) { cfg.Session.FilePath = "" },
			wantErr: "SESSION_FILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
