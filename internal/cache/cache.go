// Package cache stores rendered read results in Redis. Every key embeds a
// generation number; bumping the generation orphans every cached entry at
// once, and the orphans age out by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces keys when none is configured.
const DefaultPrefix = "wampin:cache:"

// Metrics counts cache lookups by result.
type Metrics struct {
	requests *prometheus.CounterVec
}

// NewMetrics registers the cache counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wampin_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.requests)
	return m
}

func (m *Metrics) observe(result string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(result).Inc()
}

// Cache is a Redis-backed JSON cache. Redis failures are logged and reported
// as misses, so callers fall through to the source of truth.
type Cache struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	metrics *Metrics
	logger  *slog.Logger
}

// New creates a cache. metrics may be nil.
func New(client redis.Cmdable, prefix string, ttl time.Duration, metrics *Metrics, logger *slog.Logger) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *Cache) genKey() string { return c.prefix + "gen" }

func (c *Cache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *Cache) key(gen, key string) string {
	return c.prefix + "v" + gen + ":" + key
}

// GetJSON loads key into dst. It reports whether dst was filled.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	gen, err := c.generation(ctx)
	if err != nil {
		c.fail(ctx, "read generation", key, err)
		return false
	}

	data, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.observe("miss")
		return false
	}
	if err != nil {
		c.fail(ctx, "get", key, err)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.fail(ctx, "decode", key, err)
		return false
	}
	c.metrics.observe("hit")
	return true
}

// SetJSON stores v under key for the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.fail(ctx, "encode", key, err)
		return
	}

	gen, err := c.generation(ctx)
	if err != nil {
		c.fail(ctx, "read generation", key, err)
		return
	}
	if err := c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err(); err != nil {
		c.fail(ctx, "set", key, err)
	}
}

// Invalidate starts a new generation, hiding every entry written before it.
func (c *Cache) Invalidate(ctx context.Context) {
	gen, err := c.client.Incr(ctx, c.genKey()).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
		return
	}
	c.logger.DebugContext(ctx, "cache invalidated", slog.String("generation", strconv.FormatInt(gen, 10)))
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) fail(ctx context.Context, op, key string, err error) {
	c.metrics.observe("error")
	c.logger.WarnContext(ctx, "cache unavailable, serving uncached",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// Nop is a cache that never stores anything. It is used when Redis is not
// configured.
type Nop struct{}

// GetJSON always misses.
func (Nop) GetJSON(context.Context, string, any) bool { return false }

// SetJSON discards v.
func (Nop) SetJSON(context.Context, string, any) {}

// Invalidate does nothing.
func (Nop) Invalidate(context.Context) {}
