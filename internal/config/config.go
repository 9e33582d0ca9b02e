// Package config provides configuration management for the warden
// service. Configuration is loaded from environment variables with the
// WARDEN_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration settings for the service.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// HTTPPort is the port for the REST API and dashboard feed (default: 8080)
	HTTPPort int
	// ShutdownTimeout is the graceful shutdown timeout (default: 30s)
	ShutdownTimeout time.Duration
	// AllowedOrigins is the list of allowed WebSocket origins (default: *)
	AllowedOrigins []string
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	// Path is the sqlite database file (default: warden.db)
	Path string
}

// AuthConfig holds the static credential for the API.
type AuthConfig struct {
	// Token is the bearer token required on /api and /ws. Empty
	// disables authentication (default: empty)
	Token string
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error) (default: info)
	Level string
	// Format is the log format (json, console) (default: json)
	Format string
}

// ObservabilityConfig holds tracing settings.
type ObservabilityConfig struct {
	// TracingEnabled enables OpenTelemetry tracing (default: false)
	TracingEnabled bool
	// TracingEndpoint is the OTLP collector endpoint (e.g., "localhost:4318")
	TracingEndpoint string
	// TracingInsecure disables TLS for the tracing connection (default: true)
	TracingInsecure bool
	// TracingSampleRate is the sampling rate (0.0 to 1.0) (default: 1.0)
	TracingSampleRate float64
	// Environment is the deployment environment (e.g., "production")
	Environment string
}

// Load reads configuration from environment variables.
// Environment variables use the WARDEN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:        getEnvInt("WARDEN_HTTP_PORT", 8080),
			ShutdownTimeout: getEnvDuration("WARDEN_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvList("WARDEN_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Path: getEnv("WARDEN_DATABASE_PATH", "warden.db"),
		},
		Auth: AuthConfig{
			Token: getEnv("WARDEN_AUTH_TOKEN", ""),
		},
		Log: LogConfig{
			Level:  getEnv("WARDEN_LOG_LEVEL", "info"),
			Format: getEnv("WARDEN_LOG_FORMAT", "json"),
		},
		Observability: ObservabilityConfig{
			TracingEnabled:    getEnvBool("WARDEN_TRACING_ENABLED", false),
			TracingEndpoint:   getEnv("WARDEN_TRACING_ENDPOINT", ""),
			TracingInsecure:   getEnvBool("WARDEN_TRACING_INSECURE", true),
			TracingSampleRate: getEnvFloat("WARDEN_TRACING_SAMPLE_RATE", 1.0),
			Environment:       getEnv("WARDEN_ENVIRONMENT", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all configuration fields are valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		errs = append(errs, errors.New("WARDEN_HTTP_PORT must be between 1 and 65535"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("WARDEN_SHUTDOWN_TIMEOUT must be greater than 0"))
	}

	if c.Database.Path == "" {
		errs = append(errs, errors.New("WARDEN_DATABASE_PATH is required"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, errors.New("WARDEN_LOG_LEVEL must be one of: debug, info, warn, error"))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, errors.New("WARDEN_LOG_FORMAT must be one of: json, console"))
	}

	if c.Observability.TracingEnabled && c.Observability.TracingEndpoint == "" {
		errs = append(errs, errors.New("WARDEN_TRACING_ENDPOINT is required when tracing is enabled"))
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		errs = append(errs, errors.New("WARDEN_TRACING_SAMPLE_RATE must be between 0.0 and 1.0"))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// ValidationError contains multiple validation errors.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// AuthEnabled returns true if a static credential is configured.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Token != ""
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
