// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// UploadsDir is the servable image directory. Defaults to "uploads".
	UploadsDir string

	// QuarantineDir holds soft-deleted images until the retention sweeper
	// purges them. Defaults to "deleted_uploads".
	QuarantineDir string

	// Retention is how long a quarantined image is kept before permanent
	// purge. Set RETENTION_DAYS to override. Defaults to 7 days.
	Retention time.Duration

	// SweepSchedule is the cron expression for the retention sweeper.
	// Defaults to "0 2 * * *" (02:00 every night).
	SweepSchedule string

	// MaxBodyBytes caps any request body, uploads included.
	// Set MAX_BODY_BYTES to override. Defaults to 32 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable whose value does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		QuarantineDir: getEnv("QUARANTINE_DIR", "deleted_uploads"),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 2 * * *"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	retentionDays, err := getEnvInt("RETENTION_DAYS", 7)
	if err != nil {
		return Config{}, err
	}
	if retentionDays < 1 {
		return Config{}, fmt.Errorf("RETENTION_DAYS must be at least 1, got %d", retentionDays)
	}
	cfg.Retention = time.Duration(retentionDays) * 24 * time.Hour

	maxBody, err := getEnvInt("MAX_BODY_BYTES", 32<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable, returning fallback when
// the variable is unset or empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
