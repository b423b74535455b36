package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.UpstreamRequestsTotal)
	assert.NotNil(t, m.UpstreamRequestDuration)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.CacheMissesTotal)
	assert.NotNil(t, m.PipelineRunsTotal)
	assert.NotNil(t, m.VehiclesServed)
}

func TestCounters(t *testing.T) {
	m := New()

	m.CacheHitsTotal.WithLabelValues("train").Inc()
	m.CacheHitsTotal.WithLabelValues("train").Inc()
	m.CacheMissesTotal.WithLabelValues("bus").Inc()
	m.VehiclesServed.WithLabelValues("train").Set(42)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("train")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("bus")))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.VehiclesServed.WithLabelValues("train")))
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not share state or panic on double registration.
	m1 := New()
	m2 := New()

	m1.CacheHitsTotal.WithLabelValues("train").Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(m2.CacheHitsTotal.WithLabelValues("train")))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.UpstreamRequestsTotal.WithLabelValues("VehiclePositions", "ok").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "tracker_upstream_requests_total")
}
