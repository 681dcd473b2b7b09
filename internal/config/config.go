package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Akshaybondre123/First-Startup/internal/engine"
	pkgconfig "github.com/Akshaybondre123/First-Startup/pkg/config"
	"github.com/Akshaybondre123/First-Startup/pkg/database"
	"github.com/Akshaybondre123/First-Startup/pkg/tracing"
)

// Config holds all configuration for the Wampin API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"5000"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	FrontendURL    string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// CORSAllowAll accepts any origin. ENVIRONMENT=production implies it.
	CORSAllowAll bool `env:"CORS_ALLOW_ALL" envDefault:"false"`

	// PostgreSQL. DATABASE_URL wins over the discrete fields.
	DatabaseURL  string `env:"DATABASE_URL"`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"wampin"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"wampin"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"wampin"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
	SlowQueryThresholdMs  int   `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Discovery backend: postgres, elasticsearch or memory.
	DiscoveryBackend string `env:"DISCOVERY_BACKEND" envDefault:"postgres"`

	// Elasticsearch
	ESURL   string `env:"ES_URL" envDefault:"http://localhost:9200"`
	ESIndex string `env:"ES_INDEX" envDefault:"wampin_restaurants"`

	// Redis response cache
	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisURL      string        `env:"REDIS_URL"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"wampin-indexer"`

	// Admin auth. An empty secret leaves admin routes open.
	JWTSecret string `env:"JWT_SECRET"`

	// Review submission limit per client IP. Zero RPS disables it.
	ReviewRateLimitRPS   float64 `env:"REVIEW_RATE_LIMIT_RPS" envDefault:"1"`
	ReviewRateLimitBurst int     `env:"REVIEW_RATE_LIMIT_BURST" envDefault:"5"`

	// Pprof debug endpoints (IP allowlist in CIDR notation). Empty disables them.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// OpenTelemetry
	Tracing tracing.Config
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wampin config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var backends = []string{engine.BackendPostgres, engine.BackendElasticsearch, engine.BackendMemory}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(backends, c.DiscoveryBackend) {
		return fmt.Errorf("DISCOVERY_BACKEND must be one of %v, got %q", backends, c.DiscoveryBackend)
	}
	if c.DatabaseURL == "" && (c.PostgresHost == "" || c.PostgresUser == "") {
		return errors.New("DATABASE_URL or POSTGRES_HOST and POSTGRES_USER are required")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.DiscoveryBackend == engine.BackendElasticsearch && c.ESURL == "" {
		return errors.New("ES_URL is required for the elasticsearch backend")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.RedisEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.ReviewRateLimitRPS < 0 {
		return fmt.Errorf("REVIEW_RATE_LIMIT_RPS must not be negative, got %g", c.ReviewRateLimitRPS)
	}
	if c.ReviewRateLimitRPS > 0 && c.ReviewRateLimitBurst < 1 {
		return fmt.Errorf("REVIEW_RATE_LIMIT_BURST must be at least 1, got %d", c.ReviewRateLimitBurst)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}

// Postgres returns the pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		URL:             c.DatabaseURL,
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the cache connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		URL:      c.RedisURL,
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// SearchEngineEnabled reports whether discovery runs on a secondary index
// that must be kept in step with Postgres.
func (c *Config) SearchEngineEnabled() bool {
	return c.DiscoveryBackend != engine.BackendPostgres
}
