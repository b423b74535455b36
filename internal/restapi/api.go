// Package restapi exposes the aggregated vehicle datasets over HTTP.
package restapi

import (
	"context"
	"log/slog"
	"net/http"

	"tracker.transitlive.org/internal/clock"
	"tracker.transitlive.org/internal/metrics"
	"tracker.transitlive.org/internal/models"
)

// VehicleSource produces the enriched snapshots the handlers serve. The
// tracker service implements it.
type VehicleSource interface {
	TrainVehicles(ctx context.Context) ([]models.EnrichedVehicle, error)
	BusVehicles(ctx context.Context) ([]models.EnrichedVehicle, error)
}

// RestAPI holds the dependencies for the HTTP handlers and middleware.
type RestAPI struct {
	Source  VehicleSource
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Clock   clock.Clock
	Env     string
	Version string

	// CacheSeconds drives the Cache-Control max-age; it mirrors the
	// pipeline's freshness window so HTTP caches and the snapshot cache
	// expire together.
	CacheSeconds int

	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit int
}

// SetRoutes registers all endpoints on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.Handle("GET /fetch-train-data", CacheControlMiddleware(api.CacheSeconds, http.HandlerFunc(api.trainDataHandler)))
	mux.Handle("GET /fetch-bus-data", CacheControlMiddleware(api.CacheSeconds, http.HandlerFunc(api.busDataHandler)))
	mux.Handle("GET /healthcheck", CacheControlMiddleware(0, http.HandlerFunc(api.healthHandler)))
	if api.Metrics != nil {
		mux.Handle("GET /metrics", api.Metrics.Handler())
	}
}

// Handler returns the complete handler chain: recovery outermost, then
// request id tagging, request logging, HTTP metrics, CORS, gzip, rate
// limiting, routing.
func (api *RestAPI) Handler() http.Handler {
	mux := http.NewServeMux()
	api.SetRoutes(mux)

	var handler http.Handler = mux
	if api.RateLimit > 0 {
		clk := api.Clock
		if clk == nil {
			clk = clock.RealClock{}
		}
		handler = NewRateLimiter(api.RateLimit, clk).Middleware(handler)
	}
	handler = GzipMiddleware(handler)
	handler = CORSMiddleware(handler)
	handler = MetricsMiddleware(api.Metrics)(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(api.Logger)(handler)
	return handler
}
