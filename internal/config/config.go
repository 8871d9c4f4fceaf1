// Package config centralizes how the export service reads environment
// variables and exposes them as strongly typed Go values.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Backend selects where exported objects and metadata live.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendS3     Backend = "s3"
)

// Config represents runtime configuration for the service.
type Config struct {
	Address        string
	LogLevel       string
	Backend        Backend
	PublicBaseURL  string
	SigningSecret  []byte
	SignedURLTTL   time.Duration
	ProcessingPool int
	// DesignFiles seeds design file -> project ownership, parsed from
	// "df1=proj1,df2=proj2".
	DesignFiles map[string]string

	// Source images
	FetchTimeout    time.Duration
	MaxSourceBytes  int64
	MaxSurfacePixel int

	// Postgres metadata store
	DatabaseURL string

	// Redis for the asynq batch queue; empty disables the queue
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// S3-compatible object storage
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3Region    string
	S3Bucket    string
}

const (
	defaultAddress        = ":8080"
	defaultLogLevel       = "info"
	defaultBackend        = BackendMemory
	defaultPublicBaseURL  = "http://localhost:8080"
	defaultSignedTTL      = 5 * time.Minute
	defaultWorkerCount    = 2
	defaultFetchTimeout   = 20 * time.Second
	defaultMaxSourceBytes = 50 << 20 // 50 MiB
	// 3x of an 8K preview; larger surfaces are refused.
	defaultMaxSurfacePixels = 3 * 7680 * 3 * 4320
	defaultS3Region         = "us-east-1"
	defaultS3Bucket         = "exported-assets"
)

// Load reads configuration from environment variables falling back to
// defaults. A .env file in the working directory is loaded first unless
// DESIGNEXPORT_DOTENV=false; variables already set in the environment win.
func Load() (*Config, error) {
	if readEnv("DESIGNEXPORT_DOTENV", "true") != "false" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Could not parse .env file, using process environment")
		}
	}

	cfg := &Config{
		Address:         readEnv("DESIGNEXPORT_ADDRESS", defaultAddress),
		LogLevel:        readEnv("DESIGNEXPORT_LOG_LEVEL", defaultLogLevel),
		Backend:         Backend(strings.ToLower(readEnv("DESIGNEXPORT_BACKEND", string(defaultBackend)))),
		PublicBaseURL:   strings.TrimSuffix(readEnv("DESIGNEXPORT_PUBLIC_BASE_URL", defaultPublicBaseURL), "/"),
		SigningSecret:   parseSecret("DESIGNEXPORT_SIGNING_SECRET"),
		SignedURLTTL:    parseDuration("DESIGNEXPORT_SIGNED_TTL", defaultSignedTTL),
		ProcessingPool:  parseInt("DESIGNEXPORT_WORKERS", defaultWorkerCount),
		DesignFiles:     parsePairs("DESIGNEXPORT_DESIGN_FILES"),
		FetchTimeout:    parseDuration("DESIGNEXPORT_FETCH_TIMEOUT", defaultFetchTimeout),
		MaxSourceBytes:  parseInt64("DESIGNEXPORT_MAX_SOURCE_BYTES", defaultMaxSourceBytes),
		MaxSurfacePixel: parseInt("DESIGNEXPORT_MAX_SURFACE_PIXELS", defaultMaxSurfacePixels),
		DatabaseURL:     readEnv("DESIGNEXPORT_DATABASE_URL", ""),
		RedisAddr:       readEnv("DESIGNEXPORT_REDIS_ADDR", ""),
		RedisPassword:   readEnv("DESIGNEXPORT_REDIS_PASSWORD", ""),
		RedisDB:         parseInt("DESIGNEXPORT_REDIS_DB", 0),
		S3Endpoint:      readEnv("DESIGNEXPORT_S3_ENDPOINT", ""),
		S3AccessKey:     readEnv("DESIGNEXPORT_S3_ACCESS_KEY", ""),
		S3SecretKey:     readEnv("DESIGNEXPORT_S3_SECRET_KEY", ""),
		S3UseSSL:        parseBool("DESIGNEXPORT_S3_USE_SSL", false),
		S3Region:        readEnv("DESIGNEXPORT_S3_REGION", defaultS3Region),
		S3Bucket:        readEnv("DESIGNEXPORT_S3_BUCKET", defaultS3Bucket),
	}
	if cfg.SigningSecret == nil {
		cfg.SigningSecret = randomSecret()
	}
	if cfg.ProcessingPool <= 0 {
		cfg.ProcessingPool = defaultWorkerCount
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = defaultSignedTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.MaxSourceBytes <= 0 {
		cfg.MaxSourceBytes = defaultMaxSourceBytes
	}
	if cfg.MaxSurfacePixel <= 0 {
		cfg.MaxSurfacePixel = defaultMaxSurfacePixels
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendS3:
		var missing []string
		if c.DatabaseURL == "" {
			missing = append(missing, "DESIGNEXPORT_DATABASE_URL")
		}
		if c.S3Endpoint == "" {
			missing = append(missing, "DESIGNEXPORT_S3_ENDPOINT")
		}
		if c.S3Bucket == "" {
			missing = append(missing, "DESIGNEXPORT_S3_BUCKET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("backend %q requires %s", c.Backend, strings.Join(missing, ", "))
		}
		return nil
	}
	return fmt.Errorf("unknown backend %q", c.Backend)
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	// time.ParseDuration understands inputs like "5m" or "30s".
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func parsePairs(key string) map[string]string {
	out := map[string]string{}
	v, ok := os.LookupEnv(key)
	if !ok {
		return out
	}
	for _, pair := range strings.Split(v, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || k == "" || val == "" {
			continue
		}
		out[k] = val
	}
	return out
}

func parseSecret(key string) []byte {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return []byte(v)
	}
	return nil
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return []byte(hex.EncodeToString([]byte("fallbacksecret")))
	}
	return buf
}
