package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Akshaybondre123/First-Startup/internal/auth"
	"github.com/Akshaybondre123/First-Startup/internal/cache"
	"github.com/Akshaybondre123/First-Startup/internal/config"
	"github.com/Akshaybondre123/First-Startup/internal/engine"
	esengine "github.com/Akshaybondre123/First-Startup/internal/engine/elasticsearch"
	"github.com/Akshaybondre123/First-Startup/internal/engine/memory"
	"github.com/Akshaybondre123/First-Startup/internal/event"
	handler "github.com/Akshaybondre123/First-Startup/internal/handler/http"
	"github.com/Akshaybondre123/First-Startup/internal/repository/postgres"
	"github.com/Akshaybondre123/First-Startup/internal/seed"
	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/pkg/database"
	"github.com/Akshaybondre123/First-Startup/pkg/health"
	pkgkafka "github.com/Akshaybondre123/First-Startup/pkg/kafka"
	"github.com/Akshaybondre123/First-Startup/pkg/middleware"
	"github.com/Akshaybondre123/First-Startup/pkg/tracing"
)

// ServiceName identifies the API in logs, metrics and traces.
const ServiceName = "wampin-api"

// Version is reported by GET /.
const Version = "1.0.0"

const (
	shutdownTimeout = 10 * time.Second
	idempotencyTTL  = 24 * time.Hour
)

// App wires together all dependencies and runs the API.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	consumer   *pkgkafka.Consumer
	httpServer *http.Server
	closers    closers
}

// NewApp connects to every configured backend and builds the HTTP server.
// ctx bounds startup work and the lifetime of background helpers such as
// the rate limiter's sweeper. On error, everything opened so far is closed.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.closers.closeAll(context.Background(), logger)
		}
	}()

	shutdownTracing, err := tracing.Init(ctx, ServiceName, cfg.Environment, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers.add("tracing", shutdownTracing)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler()

	// PostgreSQL is the source of truth for every backend.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers.add("postgres", func(context.Context) error { pool.Close(); return nil })
	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := database.RegisterPoolMetrics(reg, pool, ServiceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	healthHandler.Register("postgres", pool.Ping)

	restaurantRepo := postgres.NewRestaurantRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)

	respCache, idem, err := a.initCache(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	publisher, kafkaMetrics := a.initProducer(reg, healthHandler)

	eng, err := a.initEngine(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	effects := service.Effects{
		Events: event.NewProducer(publisher, logger),
		Cache:  respCache,
	}
	discoverer := engine.Discoverer(restaurantRepo)
	var reindexSvc *service.ReindexService
	if eng != nil {
		discoverer = eng
		reindexSvc = service.NewReindexService(restaurantRepo, eng, logger)
		n, err := reindexSvc.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("initial reindex: %w", err)
		}
		logger.Info("search engine primed", slog.Int("restaurants", n))

		if cfg.KafkaEnabled {
			a.consumer = a.newIndexConsumer(eng, restaurantRepo, respCache, idem, kafkaMetrics)
		} else {
			effects.Index = eng
		}
	} else {
		reindexSvc = service.NewReindexService(restaurantRepo, nil, logger)
	}

	metrics := service.NewMetrics(reg)
	routerCfg := handler.RouterConfig{
		ServiceName:    ServiceName,
		Version:        Version,
		Restaurants:    service.NewRestaurantService(restaurantRepo, effects, logger),
		Discovery:      service.NewDiscoveryService(discoverer, cfg.DiscoveryBackend, respCache, metrics, logger),
		Reviews:        service.NewReviewService(reviewRepo, restaurantRepo, effects, metrics, logger),
		Seed:           service.NewSeedService(restaurantRepo, seed.Fixtures, effects, logger),
		Reindex:        reindexSvc,
		Health:         healthHandler,
		CORS:           corsConfig(cfg),
		Metrics:        middleware.NewHTTPMetrics(reg, ServiceName),
		Gatherer:       reg,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}
	if cfg.JWTSecret != "" {
		routerCfg.TokenValidator = auth.NewJWTManager(cfg.JWTSecret).Validate
	} else {
		logger.Warn("JWT_SECRET is not set; admin routes are unauthenticated")
	}
	if cfg.ReviewRateLimitRPS > 0 {
		routerCfg.ReviewRateLimit = middleware.RateLimit(ctx, cfg.ReviewRateLimitRPS, cfg.ReviewRateLimitBurst, logger)
	}

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("application initialized",
		slog.String("discovery_backend", cfg.DiscoveryBackend),
		slog.Bool("cache", cfg.RedisEnabled),
		slog.Bool("kafka", cfg.KafkaEnabled),
		slog.Bool("async_indexing", a.consumer != nil),
	)
	return a, nil
}

// initCache connects the Redis response cache. Without Redis, responses are
// not cached and consumed event ids are remembered in memory.
func (a *App) initCache(ctx context.Context, reg prometheus.Registerer, hh *health.Handler) (service.ResponseCache, pkgkafka.IdempotencyStore, error) {
	if !a.cfg.RedisEnabled {
		return cache.Nop{}, pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL), nil
	}

	client, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers.add("redis", func(context.Context) error { return client.Close() })

	c := cache.New(client, "wampin:cache:", a.cfg.CacheTTL, cache.NewMetrics(reg), a.logger)
	hh.Register("redis", c.Ping)
	a.logger.Info("redis cache enabled", slog.Duration("ttl", a.cfg.CacheTTL))
	return c, pkgkafka.NewRedisIdempotencyStore(client, "wampin:events:", idempotencyTTL), nil
}

// initProducer returns the event publisher. With Kafka disabled events are
// dropped.
func (a *App) initProducer(reg prometheus.Registerer, hh *health.Handler) (pkgkafka.Publisher, *pkgkafka.Metrics) {
	if !a.cfg.KafkaEnabled {
		return pkgkafka.NopPublisher{}, nil
	}

	metrics := pkgkafka.NewMetrics(reg)
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), metrics, a.logger)
	a.closers.add("kafka producer", func(context.Context) error { return producer.Close() })
	hh.Register("kafka", producer.Ping)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	return producer, metrics
}

// initEngine builds the secondary discovery index, or returns nil when
// discovery runs directly on Postgres.
func (a *App) initEngine(ctx context.Context, hh *health.Handler) (engine.SearchEngine, error) {
	switch a.cfg.DiscoveryBackend {
	case engine.BackendElasticsearch:
		es, err := esengine.New(ctx, a.cfg.ESURL, a.cfg.ESIndex, a.logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		hh.Register("elasticsearch", es.Ping)
		a.logger.Info("elasticsearch discovery engine initialized",
			slog.String("url", a.cfg.ESURL),
			slog.String("index", a.cfg.ESIndex),
		)
		return es, nil
	case engine.BackendMemory:
		a.logger.Info("in-memory discovery engine initialized")
		return memory.New(), nil
	default:
		return nil, nil
	}
}

// newIndexConsumer builds the consumer that keeps eng in step with the
// restaurant and review topics and invalidates cache after each change.
func (a *App) newIndexConsumer(eng engine.SearchEngine, source event.RestaurantSource, cache event.CacheInvalidator, idem pkgkafka.IdempotencyStore, metrics *pkgkafka.Metrics) *pkgkafka.Consumer {
	indexer := event.NewIndexer(eng, source, cache, a.logger)
	dlq := pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)
	a.closers.add("kafka dlq", func(context.Context) error { return dlq.Close() })

	consumerCfg := pkgkafka.ConsumerConfig{
		Brokers:    a.cfg.KafkaBrokers,
		GroupID:    a.cfg.KafkaGroupID,
		Topics:     event.Topics(),
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
	a.logger.Info("kafka index consumer initialized",
		slog.String("group", consumerCfg.GroupID),
		slog.Any("topics", consumerCfg.Topics),
	)
	return pkgkafka.NewConsumer(consumerCfg, pkgkafka.Idempotent(idem, indexer.Handle, a.logger), dlq, metrics, a.logger)
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig(cfg.FrontendURL)
	c.AllowAll = cfg.CORSAllowAll || cfg.Environment == "production"
	return c
}

// Run starts the HTTP server and the index consumer, blocking until ctx is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed", slog.String("error", runErr.Error()))
	}

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown stops the HTTP server, then closes backends in reverse order of
// creation.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	errs = append(errs, a.closers.closeAll(ctx, a.logger))

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
