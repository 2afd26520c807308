package config

import (
	"errors"
	"time"
)

// StorageBackend selects the cleaned-output store.
type StorageBackend string

const (
	StorageNone  StorageBackend = ""
	StorageLocal StorageBackend = "local"
	StorageS3    StorageBackend = "s3"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Config{} and override only what they need.
type Config struct {
	// Default encode parameters used when a scrub request does not override.
	DefaultQuality float64 // 0-1; default 0.92
	DefaultFormat  string  // "jpeg", "png", or "webp"; default "jpeg"

	// Per-request timeout for the scrub worker.  0 = no timeout; a hung
	// native decode then stalls the whole batch.
	JobTimeout time.Duration

	// Retry for transient step failures.
	MaxRetries int
	RetryDelay time.Duration

	// Streaming / memory limits.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // streaming chunk size in bytes; default 32 KiB

	// Optional persistence of cleaned outputs.
	Storage StorageBackend
	Local   LocalConfig
	S3      S3Config

	// HEIF decode backend.
	Vips VipsConfig

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// LocalConfig configures the local filesystem store.
type LocalConfig struct {
	RootDir     string
	Permissions uint32 // default 0644
}

// S3Config configures the S3-compatible store.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional custom endpoint (MinIO, etc.)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// VipsConfig controls the libvips backend used for HEIC/HEIF/AVIF decode.
type VipsConfig struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		DefaultQuality: 0.92,
		DefaultFormat:  "jpeg",
		JobTimeout:     30 * time.Second,
		MaxRetries:     0,
		RetryDelay:     200 * time.Millisecond,
		ChunkSize:      32 * 1024,
		Storage:        StorageNone,
		LogLevel:       "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.DefaultQuality < 0 || c.DefaultQuality > 1 {
		return errors.New("config: DefaultQuality must be between 0 and 1")
	}
	switch c.DefaultFormat {
	case "jpeg", "png", "webp":
	default:
		return errors.New("config: DefaultFormat must be jpeg, png, or webp")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.Storage == StorageLocal && c.Local.RootDir == "" {
		return errors.New("config: Local.RootDir is required for local storage")
	}
	if c.Storage == StorageS3 && c.S3.Bucket == "" {
		return errors.New("config: S3.Bucket is required for s3 storage")
	}
	return nil
}
