package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	Env      string // "development" or "production"
	LogLevel string
	Locale   string

	// Storage
	Backend string // "sqlite" or "minio"
	DBPath  string
	Key     string

	// Thumbnails
	Workers       int
	ThumbMaxBytes int64

	// MinIO (S3-compatible object storage)
	MinioEndpoint  string
	MinioBucket    string
	MinioPrefix    string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool

	// Observability (optional)
	SentryDSN string
}

// Load reads .env when present, then the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only
func FromEnv() *Config {
	return &Config{
		Env:      envString("FORG_ENV", "production"),
		LogLevel: envString("FORG_LOG_LEVEL", ""),
		Locale:   envString("FORG_LOCALE", "en"),

		Backend: envString("FORG_BACKEND", "sqlite"),
		DBPath:  envString("FORG_DB", defaultDBPath()),
		Key:     envString("FORG_KEY", "fo_files_v1"),

		Workers:       envInt("FORG_WORKERS", 16),
		ThumbMaxBytes: envInt64("FORG_THUMB_MAX_BYTES", 20<<20),

		MinioEndpoint:  envString("FORG_MINIO_ENDPOINT", "localhost:9000"),
		MinioBucket:    envString("FORG_MINIO_BUCKET", "forg"),
		MinioPrefix:    envString("FORG_MINIO_PREFIX", ""),
		MinioAccessKey: envString("FORG_MINIO_ACCESS_KEY", ""),
		MinioSecretKey: envString("FORG_MINIO_SECRET_KEY", ""),
		MinioSecure:    envBool("FORG_MINIO_SECURE", false),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

// defaultDBPath places the database under the user config dir, falling
// back to the working directory
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "forg.db"
	}
	return filepath.Join(dir, "forg", "forg.db")
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
