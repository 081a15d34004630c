package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	RunMigrations     bool
	SeedDemoPolicies  bool

	Redis     RedisConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PricingConfig carries the startup values of the pricing tunables. The
// hot-reloadable subset lives in PricingTuningHolder.
type PricingConfig struct {
	UsageBackend       string
	ReserveMaxAttempts int
	CatalogCacheTTL    time.Duration
	EvaluateTimeout    time.Duration
	TuningFile         string
}

// RateLimitConfig throttles evaluate calls per seller and deduplicates
// release calls. Both need Redis.
type RateLimitConfig struct {
	Enabled         bool
	EvaluateRate    float64
	EvaluateBurst   int
	ReleaseDedupTTL time.Duration
}

// TelemetryConfig points the OTLP exporters at a collector. Spans are still
// created when disabled so request ids and trace ids line up in logs.
type TelemetryConfig struct {
	Enabled       bool
	Endpoint      string
	Protocol      string
	SamplingRatio float64
}

const (
	UsageBackendSQL   = "sql"
	UsageBackendRedis = "redis"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPricingTuningHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "discount-engine"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "postgres"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 10)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 50)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		RunMigrations:     getenvBool("DATABASE_RUN_MIGRATIONS", true),
		SeedDemoPolicies:  getenvBool("SEED_DEMO_POLICIES", false),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		Pricing: PricingConfig{
			UsageBackend:       normalizeUsageBackend(getenv("PRICING_USAGE_BACKEND", UsageBackendSQL)),
			ReserveMaxAttempts: int(getenvInt64("PRICING_RESERVE_MAX_ATTEMPTS", 5)),
			CatalogCacheTTL:    getenvDuration("PRICING_CATALOG_CACHE_TTL", 30*time.Second),
			EvaluateTimeout:    getenvDuration("PRICING_EVALUATE_TIMEOUT", 2*time.Second),
			TuningFile:         strings.TrimSpace(getenv("PRICING_TUNING_FILE", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getenvBool("RATE_LIMIT_ENABLED", false),
			EvaluateRate:    getenvFloat("RATE_LIMIT_EVALUATE_RATE", 200),
			EvaluateBurst:   int(getenvInt64("RATE_LIMIT_EVALUATE_BURST", 400)),
			ReleaseDedupTTL: getenvDuration("RATE_LIMIT_RELEASE_DEDUP_TTL", 10*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:       getenvBool("OTEL_ENABLED", true),
			Endpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			Protocol:      strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: clampRatio(getenvFloat("OTEL_SAMPLING_RATIO", 0.1)),
		},
	}
}

func clampRatio(v float64) float64 {
	return min(max(v, 0), 1)
}

func normalizeUsageBackend(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case UsageBackendRedis:
		return UsageBackendRedis
	default:
		return UsageBackendSQL
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go duration strings ("250ms") or whole seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return def
}
