package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Akshaybondre123/First-Startup/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation_id,
// actor, trace_id and span_id in the context, for logger.FromContext.
// Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
