package middleware

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins are matched exactly against the Origin header.
	AllowedOrigins []string

	// AllowedOriginPatterns are anchored regular expressions, e.g.
	// `^https://.*\.vercel\.app$` for preview deployments.
	AllowedOriginPatterns []string

	// AllowAll accepts every origin. Production deployments of the public
	// API run this way.
	AllowAll bool

	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

// DefaultCORSConfig returns the origins the web frontend is served from.
func DefaultCORSConfig(frontendURL string) CORSConfig {
	return CORSConfig{
		AllowedOrigins:        []string{frontendURL, "http://localhost:3001"},
		AllowedOriginPatterns: []string{`^https://.*\.vercel\.app$`},
		AllowedMethods:        []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:        []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:        []string{"X-Correlation-ID"},
		MaxAge:                3600,
		AllowCredentials:      true,
	}
}

// CORS returns middleware that applies cfg. Requests without an Origin header
// (curl, server-to-server, same-origin navigation) always pass. A request
// from an origin that is not allowed is rejected with 403 before it reaches
// the handler. Invalid patterns are logged and skipped.
func CORS(cfg CORSConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"}
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	exact := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			cfg.AllowAll = true
			continue
		}
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			exact[o] = struct{}{}
		}
	}
	var patterns []*regexp.Regexp
	for _, p := range cfg.AllowedOriginPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			if logger != nil {
				logger.Warn("invalid CORS origin pattern, skipping",
					slog.String("pattern", p), slog.String("error", err.Error()))
			}
			continue
		}
		patterns = append(patterns, re)
	}

	allowed := func(origin string) bool {
		if cfg.AllowAll {
			return true
		}
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, re := range patterns {
			if re.MatchString(origin) {
				return true
			}
		}
		return false
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed(origin) {
				if logger != nil {
					logger.Warn("CORS origin rejected",
						slog.String("origin", origin),
						slog.String("path", r.URL.Path),
					)
				}
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "CORS_REJECTED", Message: "Not allowed by CORS"},
				})
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
