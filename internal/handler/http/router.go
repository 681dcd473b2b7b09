package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Akshaybondre123/First-Startup/internal/auth"
	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/pkg/health"
	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
	"github.com/Akshaybondre123/First-Startup/pkg/middleware"
)

// suggestMaxAge is how long clients may cache tag suggestions, in seconds.
const suggestMaxAge = 300

// RouterConfig collects everything NewRouter mounts.
type RouterConfig struct {
	ServiceName string
	Version     string

	Restaurants *service.RestaurantService
	Discovery   *service.DiscoveryService
	Reviews     *service.ReviewService
	Seed        *service.SeedService
	Reindex     *service.ReindexService
	Health      *health.Handler

	CORS middleware.CORSConfig

	// TokenValidator guards the admin routes. Nil leaves them open.
	TokenValidator middleware.TokenValidator

	// ReviewRateLimit wraps POST /api/reviews. Nil disables it.
	ReviewRateLimit func(http.Handler) http.Handler

	// Metrics and Gatherer enable request metrics and GET /metrics.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	// PprofCIDRs, when set, mounts /debug/pprof for those networks.
	PprofCIDRs []string

	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates a chi router with every API route registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.NotFound(httputil.NotFoundHandler)
	r.MethodNotAllowed(httputil.MethodNotAllowedHandler)

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORS, logger))
	r.Use(chimw.Compress(5))

	// Operational endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	meta := NewMetaHandler(cfg.Version, cfg.Reindex, logger)
	restaurants := NewRestaurantHandler(cfg.Restaurants, cfg.Discovery, cfg.Seed, logger)
	reviews := NewReviewHandler(cfg.Reviews, logger)

	admin := func(r chi.Router) {
		if cfg.TokenValidator != nil {
			r.Use(middleware.Auth(cfg.TokenValidator))
			r.Use(middleware.RequireRole(auth.RoleAdmin))
		}
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))

		r.Get("/", meta.Info)
		r.Get("/api/health", meta.Health)

		r.With(middleware.CacheControl(suggestMaxAge)).Get("/api/tags/suggest", meta.SuggestTags)

		r.Route("/api/restaurants", func(r chi.Router) {
			r.Get("/", restaurants.Discover)
			r.Post("/", restaurants.Create)
			r.Get("/{id}", restaurants.Get)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/seed", restaurants.Seed)
				r.Put("/{id}", restaurants.Update)
				r.Delete("/{id}", restaurants.Delete)
			})
		})

		r.Route("/api/reviews", func(r chi.Router) {
			if cfg.ReviewRateLimit != nil {
				r.With(cfg.ReviewRateLimit).Post("/", reviews.Submit)
			} else {
				r.Post("/", reviews.Submit)
			}
			r.Get("/{restaurantId}", reviews.List)
		})

		r.Route("/api/admin", func(r chi.Router) {
			admin(r)
			r.Post("/reindex", meta.Reindex)
		})
	})

	return r
}
