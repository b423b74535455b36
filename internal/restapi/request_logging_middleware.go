package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"tracker.transitlive.org/internal/logging"
)

// NewRequestLoggingMiddleware creates middleware that logs every request and
// makes the logger available to downstream handlers via the context.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			r = r.WithContext(logging.WithLogger(r.Context(), logger))
			wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			logging.LogHTTPRequest(logger,
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				float64(duration.Nanoseconds())/1e6,
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("user_agent", r.Header.Get("User-Agent")))
		})
	}
}
