package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Archive ArchiveConfig
	Server  ServerConfig
	Extract ExtractConfig
}

// ArchiveConfig holds outcome-archive configuration. An empty DSN disables
// archiving; a postgres:// DSN selects Postgres, anything else is treated
// as a SQLite path (":memory:" included).
type ArchiveConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	MaxUploadMB    int
	SnippetLimit   int
}

// ExtractConfig holds extraction configuration
type ExtractConfig struct {
	Workers     int
	ProfilePath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			DSN:             getEnv("ARCHIVE_DSN", ""),
			MaxConns:        getEnvAsInt32("ARCHIVE_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("ARCHIVE_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("ARCHIVE_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("ARCHIVE_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("ARCHIVE_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
			MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 64),
			SnippetLimit:   getEnvAsInt("SNIPPET_LIMIT", 3000),
		},
		Extract: ExtractConfig{
			Workers:     getEnvAsInt("EXTRACT_WORKERS", 4),
			ProfilePath: getEnv("PROFILE_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extract.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Server.SnippetLimit < 0 {
		return NewAppError("CONFIG_ERROR", "SNIPPET_LIMIT must not be negative", ErrInvalidInput)
	}
	return nil
}
