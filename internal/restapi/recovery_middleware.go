package restapi

import (
	"log/slog"
	"net/http"

	"tracker.transitlive.org/internal/report"
)

// RecoveryMiddleware converts handler panics into 500 responses so one bad
// request cannot take the server down.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if logger != nil {
						logger.Error("panic recovered",
							slog.Any("panic", rec),
							slog.String("method", r.Method),
							slog.String("path", r.URL.Path))
					}
					report.CapturePanic(rec)
					sendError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
