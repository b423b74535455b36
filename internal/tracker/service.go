// Package tracker implements the fetch, enrich, and cache pipeline: tiled vehicle
// queries against the upstream, the per-vehicle trip-detail join, the
// relevance filter, and the freshness-windowed snapshot cache that gates
// upstream load.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"tracker.transitlive.org/internal/clock"
	"tracker.transitlive.org/internal/logging"
	"tracker.transitlive.org/internal/metrics"
	"tracker.transitlive.org/internal/models"
	"tracker.transitlive.org/internal/otp"
	"tracker.transitlive.org/internal/utils"
)

// Querier is the upstream capability the pipeline consumes.
type Querier interface {
	VehiclePositions(ctx context.Context, bounds utils.CoordinateBounds, modes []string) ([]otp.VehiclePosition, error)
	Trip(ctx context.Context, tripID, serviceDay string) (*otp.TripDetail, error)
}

// DatasetConfig describes how one dataset is fetched. Tiled datasets split
// their coverage box into four quadrants queried independently, for vehicle
// classes that would overflow a single query's limit.
type DatasetConfig struct {
	Bounds utils.CoordinateBounds
	Modes  []string
	Tiled  bool
}

// Config holds the pipeline settings for both datasets.
type Config struct {
	Train           DatasetConfig
	Bus             DatasetConfig
	FreshnessWindow time.Duration
	// TripConcurrency bounds the trip-detail fan-out. Zero means the default.
	TripConcurrency int
}

const defaultTripConcurrency = 8

// Service runs the pipeline on cache misses and serves cached snapshots
// otherwise. Concurrent misses for the same dataset collapse into a single
// in-flight run.
type Service struct {
	querier Querier
	cache   *SnapshotCache
	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config
	group   singleflight.Group
}

func NewService(querier Querier, clk clock.Clock, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	return &Service{
		querier: querier,
		cache:   NewSnapshotCache(),
		clock:   clk,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
	}
}

// TrainVehicles returns the enriched train snapshot, running the pipeline if
// the cached one is no longer fresh.
func (s *Service) TrainVehicles(ctx context.Context) ([]models.EnrichedVehicle, error) {
	return s.vehicles(ctx, DatasetTrain, s.cfg.Train)
}

// BusVehicles returns the enriched coach snapshot, assembled from four tiled
// sub-queries on a miss.
func (s *Service) BusVehicles(ctx context.Context) ([]models.EnrichedVehicle, error) {
	return s.vehicles(ctx, DatasetBus, s.cfg.Bus)
}

func (s *Service) vehicles(ctx context.Context, key Dataset, dataset DatasetConfig) ([]models.EnrichedVehicle, error) {
	if snapshot, ok := s.cache.Get(key, s.clock.Now(), s.cfg.FreshnessWindow); ok {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues(string(key)).Inc()
		}
		return snapshot, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues(string(key)).Inc()
	}

	// Late waiters ride on the first miss's run and context.
	result, err, _ := s.group.Do(string(key), func() (any, error) {
		return s.refresh(ctx, key, dataset)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.EnrichedVehicle), nil
}

// refresh executes one full pipeline run. A top-level fetch failure aborts
// the run and leaves any previous snapshot untouched.
func (s *Service) refresh(ctx context.Context, key Dataset, dataset DatasetConfig) ([]models.EnrichedVehicle, error) {
	now := s.clock.Now()

	var positions []otp.VehiclePosition
	var err error
	if dataset.Tiled {
		positions, err = s.fetchTiled(ctx, key, dataset)
	} else {
		positions, err = s.querier.VehiclePositions(ctx, dataset.Bounds, dataset.Modes)
	}
	if err != nil {
		s.observeRun(key, "error", 0)
		logging.LogError(s.logger, "vehicle fetch failed", err, slog.String("dataset", string(key)))
		return nil, err
	}

	details := s.fetchTripDetails(ctx, key, positions, serviceDay(now))
	joined := joinTripDetails(positions, details)
	relevant := filterConcluded(joined, secondsSinceMidnight(now))

	snapshot := make([]models.EnrichedVehicle, 0, len(relevant))
	for _, j := range relevant {
		snapshot = append(snapshot, buildEnriched(j))
	}

	s.cache.Put(key, snapshot, s.clock.Now())
	s.observeRun(key, "ok", len(snapshot))
	s.logger.Debug("pipeline run complete",
		slog.String("dataset", string(key)),
		slog.Int("fetched", len(positions)),
		slog.Int("served", len(snapshot)))
	return snapshot, nil
}

// fetchTiled queries the dataset's four quadrants concurrently and
// concatenates the results in quadrant order, without deduplication. A
// failed quadrant degrades to an empty result; only when every quadrant
// fails does the run abort.
func (s *Service) fetchTiled(ctx context.Context, key Dataset, dataset DatasetConfig) ([]otp.VehiclePosition, error) {
	quadrants := dataset.Bounds.Quadrants()

	var wg sync.WaitGroup
	results := make([][]otp.VehiclePosition, len(quadrants))
	errs := make([]error, len(quadrants))

	for i, quadrant := range quadrants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vehicles, err := s.querier.VehiclePositions(ctx, quadrant, dataset.Modes)
			if err != nil {
				errs[i] = err
				logging.LogError(s.logger, "tile fetch failed, degrading to empty", err,
					slog.String("dataset", string(key)), slog.Int("tile", i))
				return
			}
			results[i] = vehicles
		}()
	}
	wg.Wait()

	var lastErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			lastErr = err
		}
	}
	if failed == len(quadrants) {
		return nil, lastErr
	}

	var combined []otp.VehiclePosition
	for _, tile := range results {
		combined = append(combined, tile...)
	}
	return combined, nil
}

// fetchTripDetails issues one trip query per vehicle carrying a trip id,
// with bounded concurrency. Duplicate trip ids are queried redundantly; the
// domain is effectively 1:1 vehicle-to-trip, so collapsing them has not been
// worth the bookkeeping. Failures are logged and leave that slot nil.
func (s *Service) fetchTripDetails(ctx context.Context, key Dataset, positions []otp.VehiclePosition, day string) []*otp.TripDetail {
	limit := s.cfg.TripConcurrency
	if limit <= 0 {
		limit = defaultTripConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	details := make([]*otp.TripDetail, len(positions))
	for i, pos := range positions {
		tripID := pos.TripID()
		if tripID == "" {
			continue
		}
		g.Go(func() error {
			detail, err := s.querier.Trip(ctx, tripID, day)
			if err != nil {
				logging.LogError(s.logger, "trip detail fetch failed, vehicle stays unenriched", err,
					slog.String("dataset", string(key)), slog.String("trip_id", tripID))
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()
	return details
}

func (s *Service) observeRun(key Dataset, outcome string, served int) {
	if s.metrics == nil {
		return
	}
	s.metrics.PipelineRunsTotal.WithLabelValues(string(key), outcome).Inc()
	if outcome == "ok" {
		s.metrics.VehiclesServed.WithLabelValues(string(key)).Set(float64(served))
	}
}
