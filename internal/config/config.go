package config

import (
	"fmt"

	pkgconfig "github.com/ckcelina/my-wishlist-sub005/pkg/config"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"wishwell"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"wishwell_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"wishwell_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Price refresh
	ExtractorURL          string `env:"EXTRACTOR_URL" envDefault:"http://localhost:8090"`
	RefreshConcurrency    int    `env:"REFRESH_CONCURRENCY" envDefault:"5"`
	ExtractTimeoutSeconds int    `env:"EXTRACT_TIMEOUT_SECONDS" envDefault:"20"`

	// Guest view caching
	ShareCacheTTLSeconds int `env:"SHARE_CACHE_TTL_SECONDS" envDefault:"60"`

	// Tracing
	OTELEnabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	OTELInsecureMode bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.RefreshConcurrency < 1 {
		return nil, fmt.Errorf("REFRESH_CONCURRENCY must be at least 1, got %d", cfg.RefreshConcurrency)
	}
	if cfg.ExtractTimeoutSeconds < 1 {
		return nil, fmt.Errorf("EXTRACT_TIMEOUT_SECONDS must be at least 1, got %d", cfg.ExtractTimeoutSeconds)
	}
	if cfg.ShareCacheTTLSeconds < 0 {
		return nil, fmt.Errorf("SHARE_CACHE_TTL_SECONDS must not be negative, got %d", cfg.ShareCacheTTLSeconds)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
