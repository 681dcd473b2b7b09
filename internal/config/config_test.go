package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DiscoveryBackend)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.RedisEnabled)
	assert.False(t, cfg.SearchEngineEnabled())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_DiscoveryBackend(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
		engine  bool
	}{
		{"postgres", false, false},
		{"elasticsearch", false, true},
		{"memory", false, true},
		{"solr", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("DISCOVERY_BACKEND", tt.value)

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "DISCOVERY_BACKEND")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.engine, cfg.SearchEngineEnabled())
		})
	}
}

func TestLoad_PoolBounds(t *testing.T) {
	t.Setenv("DB_MIN_CONNS", "30")
	t.Setenv("DB_MAX_CONNS", "10")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MIN_CONNS")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("REVIEW_RATE_LIMIT_RPS", "-1")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEW_RATE_LIMIT_RPS")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestConfig_PostgresPrefersURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db.example:5432/wampin?sslmode=require")
	t.Setenv("DB_MAX_CONN_LIFETIME_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "postgres://u:p@db.example:5432/wampin?sslmode=require", pg.DSN())
	assert.Equal(t, 15*time.Minute, pg.MaxConnLifetime)
}

func TestConfig_Redis(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", cfg.Redis().Addr())
}
