package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Observability ObservabilityConfig

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
	DBAutoMigrate     bool

	SnowflakeNode int64

	RateLimit RateLimitConfig
}

// ObservabilityConfig carries logging and OpenTelemetry settings.
type ObservabilityConfig struct {
	LogLevel     string
	LogFormat    string
	OtelEnabled  bool
	OtelEndpoint string
	OtelProtocol string
	OtelSampling float64
}

// RateLimitConfig controls the redis-backed limiter in front of report routes.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ReportRate    float64
	ReportBurst   int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	redisAddr := strings.TrimSpace(getenv("REDIS_ADDR", ""))

	otlpProtocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		otlpProtocol = traces
	}

	return Config{
		AppName:           getenv("APP_SERVICE", "salesledger"),
		AppVersion:        getenv("SERVICE_VERSION", getenv("APP_VERSION", "0.1.0")),
		Environment:       getenv("DEPLOYMENT_ENV", getenv("ENVIRONMENT", "development")),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "salesledger"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 10)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		Observability: ObservabilityConfig{
			LogLevel:     strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:    strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:  getenvBool("OTEL_ENABLED", false),
			OtelEndpoint: strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			OtelProtocol: strings.ToLower(strings.TrimSpace(otlpProtocol)),
			OtelSampling: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		RateLimit: RateLimitConfig{
			Enabled:       redisAddr != "" && getenvBool("RATE_LIMIT_ENABLED", true),
			RedisAddr:     redisAddr,
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       int(getenvInt64("REDIS_DB", 0)),
			ReportRate:    getenvFloat("RATE_LIMIT_REPORT_RATE", 20),
			ReportBurst:   int(getenvInt64("RATE_LIMIT_REPORT_BURST", 40)),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
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
