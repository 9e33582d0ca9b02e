package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "warden.db", cfg.Database.Path)
	assert.Empty(t, cfg.Auth.Token)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Observability.TracingEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WARDEN_HTTP_PORT", "9090")
	t.Setenv("WARDEN_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("WARDEN_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("WARDEN_DATABASE_PATH", "/var/lib/warden/warden.db")
	t.Setenv("WARDEN_AUTH_TOKEN", "secret")
	t.Setenv("WARDEN_LOG_LEVEL", "debug")
	t.Setenv("WARDEN_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/var/lib/warden/warden.db", cfg.Database.Path)
	assert.Equal(t, "secret", cfg.Auth.Token)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("WARDEN_HTTP_PORT", "not-a-port")
	t.Setenv("WARDEN_SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("WARDEN_TRACING_SAMPLE_RATE", "lots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1.0, cfg.Observability.TracingSampleRate)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("WARDEN_HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WARDEN_HTTP_PORT")
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:        0,
			ShutdownTimeout: -time.Second,
		},
		Database: DatabaseConfig{Path: ""},
		Log:      LogConfig{Level: "loud", Format: "xml"},
		Observability: ObservabilityConfig{
			TracingEnabled:    true,
			TracingEndpoint:   "",
			TracingSampleRate: 2.0,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 7)
	assert.Contains(t, err.Error(), "7 validation errors")
}

func TestValidateTracingEndpointRequiredWhenEnabled(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{HTTPPort: 8080, ShutdownTimeout: time.Second},
		Database: DatabaseConfig{Path: "warden.db"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Observability: ObservabilityConfig{
			TracingEnabled:    true,
			TracingSampleRate: 1.0,
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WARDEN_TRACING_ENDPOINT")
}

func TestValidationErrorSingle(t *testing.T) {
	err := &ValidationError{Errors: []error{assert.AnError}}

	assert.Equal(t, assert.AnError.Error(), err.Error())
}
