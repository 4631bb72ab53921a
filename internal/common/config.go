package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Blob     BlobConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

// DatabaseConfig holds document store configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// BlobConfig selects and configures the blob store
type BlobConfig struct {
	Backend         string // "local" | "oss"
	LocalRoot       string
	OSSEndpoint     string
	OSSAccessKey    string
	OSSSecretKey    string
	OSSBucket       string
	OSSObjectPrefix string
}

// PipelineConfig holds extraction and persistence tuning
type PipelineConfig struct {
	PersistBatchSize   int
	PersistConcurrency int
	StrictMatching     bool
	PDFLayoutFile      string // optional YAML override for PDF heuristics
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return WrapError(err, "load "+p)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:              getEnv("DB_URL", "file:roster.db?_pragma=busy_timeout(5000)"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Blob: BlobConfig{
			Backend:         strings.ToLower(getEnv("BLOB_BACKEND", "local")),
			LocalRoot:       getEnv("BLOB_LOCAL_ROOT", "./data/blobs"),
			OSSEndpoint:     getEnv("ALI_OSS_ENDPOINT", ""),
			OSSAccessKey:    getEnv("ALI_OSS_ACCESS_KEY", ""),
			OSSSecretKey:    getEnv("ALI_OSS_SECRET_KEY", ""),
			OSSBucket:       getEnv("ALI_OSS_BUCKET", ""),
			OSSObjectPrefix: getEnv("ALI_OSS_PREFIX", ""),
		},
		Pipeline: PipelineConfig{
			PersistBatchSize:   getEnvAsInt("PERSIST_BATCH_SIZE", 500),
			PersistConcurrency: getEnvAsInt("PERSIST_CONCURRENCY", 1),
			StrictMatching:     getEnvAsBool("ROSTER_STRICT_MATCHING", false),
			PDFLayoutFile:      getEnv("PDF_LAYOUT_FILE", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// SlogLevel parses the configured level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	switch c.Blob.Backend {
	case "local":
		if c.Blob.LocalRoot == "" {
			return NewAppError("CONFIG_ERROR", "BLOB_LOCAL_ROOT is required for the local backend", ErrInvalidInput)
		}
	case "oss":
		if c.Blob.OSSEndpoint == "" || c.Blob.OSSAccessKey == "" || c.Blob.OSSSecretKey == "" || c.Blob.OSSBucket == "" {
			return NewAppError("CONFIG_ERROR", "ALI_OSS_ENDPOINT, ALI_OSS_ACCESS_KEY, ALI_OSS_SECRET_KEY and ALI_OSS_BUCKET are required for the oss backend", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "BLOB_BACKEND must be local or oss", ErrInvalidInput)
	}
	if c.Pipeline.PersistBatchSize <= 0 {
		return NewAppError("CONFIG_ERROR", "PERSIST_BATCH_SIZE must be positive", ErrInvalidInput)
	}
	if c.Pipeline.PersistConcurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "PERSIST_CONCURRENCY must be positive", ErrInvalidInput)
	}
	return nil
}
