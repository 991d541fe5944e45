package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMySQL  = "mysql"
)

// Config holds application configuration from environment variables
type Config struct {
	// Application
	AppPort string

	// Logging
	LogLevel  string
	LogFormat string // json or console

	// Storage
	StorageBackend   string
	StorageKeyPrefix string
	StorageTimeout   time.Duration

	// Redis
	RedisURL string
	RedisTTL time.Duration // zero keeps keys forever

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// OpenTelemetry
	MetricsEnabled            bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPProtocol  string
	OTELExporterOTLPHeaders   string // For SigNoz Cloud: signoz-ingestion-key=<key>
	OTELExporterOTLPInsecure  bool   // true for http://, false for https://
	OTELServiceName           string
	OTELServiceVersion        string
	OTELDeploymentEnvironment string
	OTELResourceAttributes    string
}

// LoadConfig loads configuration from .env file and environment variables with defaults
func LoadConfig() *Config {
	// .env is optional; only report real parse errors
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		StorageBackend:   getEnv("STORAGE_BACKEND", StorageMemory),
		StorageKeyPrefix: getEnv("STORAGE_KEY_PREFIX", "mydrugs_"),
		StorageTimeout:   getEnvDuration("STORAGE_TIMEOUT", 2*time.Second),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTTL: getEnvDuration("REDIS_TTL", 0),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "storefront"),

		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPProtocol:  getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf"),
		OTELExporterOTLPHeaders:   getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true), // Default true for local dev
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "storefront-go-app"),
		OTELServiceVersion:        getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTELDeploymentEnvironment: getEnv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
		OTELResourceAttributes:    getEnv("OTEL_RESOURCE_ATTRIBUTES", ""),
	}
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// GetAppPortInt returns the application port as an integer
func (c *Config) GetAppPortInt() int {
	port, err := strconv.Atoi(c.AppPort)
	if err != nil {
		return 8080
	}
	return port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if value == "true" || value == "1" || value == "yes" {
			return true
		}
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	}
	return defaultValue
}
