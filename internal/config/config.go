package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kaotoio/kaoto/pkg/log"
)

type (
	// Config holds configuration settings for the flow collection and its
	// snapshot archive
	Config struct {
		LogLevel string

		// Flows
		DefaultDSL string

		// Snapshots
		Snapshot SnapshotConfig
	}

	// SnapshotConfig selects and configures where published flow states
	// are archived
	SnapshotConfig struct {
		Store         string
		BlobURL       string
		Prefix        string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		BatchSize     int
		Timeout       time.Duration
	}
)

const (
	StoreNone  = "none"
	StoreBlob  = "blob"
	StoreRedis = "redis"
)

const (
	DefaultDSL = "Route"

	DefaultRedisEndpoint   = "localhost:6379"
	DefaultRedisDB         = 0
	DefaultSnapshotPrefix  = "kaoto"
	DefaultBatchSize       = 16
	DefaultSnapshotTimeout = 10 * time.Second

	MaxRedisDB   = 15
	MaxBatchSize = 10_000
	MaxTimeout   = time.Hour
)

var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrDefaultDSLEmpty     = errors.New("default DSL empty")
	ErrInvalidStore        = errors.New("invalid snapshot store")
	ErrBlobURLRequired     = errors.New("blob snapshot store requires a URL")
	ErrRedisAddrRequired   = errors.New("redis snapshot store requires addr")
	ErrInvalidBatchSize    = errors.New("snapshot batch size must be positive")
	ErrInvalidTimeout      = errors.New("snapshot timeout must be positive")
	ErrSnapshotPrefixEmpty = errors.New("snapshot prefix empty")
)

// NewDefaultConfig creates a configuration with an in-memory only flow
// collection and sensible defaults for the optional snapshot stores
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		DefaultDSL: DefaultDSL,
		Snapshot: SnapshotConfig{
			Store:     StoreNone,
			Prefix:    DefaultSnapshotPrefix,
			RedisAddr: DefaultRedisEndpoint,
			RedisDB:   DefaultRedisDB,
			BatchSize: DefaultBatchSize,
			Timeout:   DefaultSnapshotTimeout,
		},
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if dsl := os.Getenv("DEFAULT_DSL"); dsl != "" {
		c.DefaultDSL = dsl
	}
	LoadSnapshotConfigFromEnv(&c.Snapshot, "SNAPSHOT")

	if err := loadEnvInt(
		"SNAPSHOT_REDIS_DB", &c.Snapshot.RedisDB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"SNAPSHOT_BATCH_SIZE", &c.Snapshot.BatchSize, 0, MaxBatchSize,
	); err != nil {
		return err
	}
	return loadEnvDuration(
		"SNAPSHOT_TIMEOUT", &c.Snapshot.Timeout, 0, MaxTimeout,
	)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.DefaultDSL == "" {
		return ErrDefaultDSLEmpty
	}
	return c.Snapshot.Validate()
}

// Validate checks the snapshot settings required by the selected store
func (s *SnapshotConfig) Validate() error {
	switch s.Store {
	case StoreNone:
		return nil
	case StoreBlob:
		if s.BlobURL == "" {
			return ErrBlobURLRequired
		}
	case StoreRedis:
		if s.RedisAddr == "" {
			return ErrRedisAddrRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStore, s.Store)
	}

	if s.Prefix == "" {
		return ErrSnapshotPrefixEmpty
	}
	if s.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if s.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Enabled reports whether published states should be archived at all
func (s *SnapshotConfig) Enabled() bool {
	return s.Store != "" && s.Store != StoreNone
}

// LoadSnapshotConfigFromEnv loads snapshot store settings from environment
// variables with the given prefix (e.g., "SNAPSHOT")
func LoadSnapshotConfigFromEnv(s *SnapshotConfig, prefix string) {
	if store := os.Getenv(prefix + "_STORE"); store != "" {
		s.Store = store
	}
	if url := os.Getenv(prefix + "_BLOB_URL"); url != "" {
		s.BlobURL = url
	}
	if envPrefix := os.Getenv(prefix + "_PREFIX"); envPrefix != "" {
		s.Prefix = envPrefix
	}
	if addr := os.Getenv(prefix + "_REDIS_ADDR"); addr != "" {
		s.RedisAddr = addr
	}
	if password := os.Getenv(prefix + "_REDIS_PASSWORD"); password != "" {
		s.RedisPassword = password
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration accepts either a Go duration string or a bare number of
// milliseconds
func loadEnvDuration(key string, dst *time.Duration, min, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		ms, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid %s: %q", key, s)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= min || d > max {
		return fmt.Errorf("invalid %s: %s out of range (%s, %s]",
			key, d, min, max)
	}
	*dst = d
	return nil
}
