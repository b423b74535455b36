package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"tracker.transitlive.org/internal/models"
)

func TestSnapshotCacheMissWhenEmpty(t *testing.T) {
	cache := NewSnapshotCache()

	_, ok := cache.Get(DatasetTrain, time.Now(), 20*time.Second)
	assert.False(t, ok)
}

func TestSnapshotCacheHitWithinWindow(t *testing.T) {
	cache := NewSnapshotCache()
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	snapshot := []models.EnrichedVehicle{{Lat: 47.5, Lon: 19.0}}

	cache.Put(DatasetTrain, snapshot, now)

	got, ok := cache.Get(DatasetTrain, now.Add(19*time.Second), 20*time.Second)
	assert.True(t, ok)
	assert.Equal(t, snapshot, got)
}

func TestSnapshotCacheMissAtWindowBoundary(t *testing.T) {
	cache := NewSnapshotCache()
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	cache.Put(DatasetTrain, []models.EnrichedVehicle{}, now)

	// Exactly at the boundary is already stale.
	_, ok := cache.Get(DatasetTrain, now.Add(20*time.Second), 20*time.Second)
	assert.False(t, ok)

	_, ok = cache.Get(DatasetTrain, now.Add(time.Minute), 20*time.Second)
	assert.False(t, ok)
}

func TestSnapshotCacheKeysAreIndependent(t *testing.T) {
	cache := NewSnapshotCache()
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

	trains := []models.EnrichedVehicle{{ShortName: "IC 123"}}
	buses := []models.EnrichedVehicle{{ShortName: "Volán 9"}}
	cache.Put(DatasetTrain, trains, now)
	cache.Put(DatasetBus, buses, now)

	gotTrains, ok := cache.Get(DatasetTrain, now, 20*time.Second)
	assert.True(t, ok)
	assert.Equal(t, trains, gotTrains)

	gotBuses, ok := cache.Get(DatasetBus, now, 20*time.Second)
	assert.True(t, ok)
	assert.Equal(t, buses, gotBuses)
}

func TestSnapshotCachePutReplacesWhole(t *testing.T) {
	cache := NewSnapshotCache()
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

	cache.Put(DatasetTrain, []models.EnrichedVehicle{{ShortName: "old"}}, now)
	cache.Put(DatasetTrain, []models.EnrichedVehicle{{ShortName: "new"}, {ShortName: "newer"}}, now.Add(time.Second))

	got, ok := cache.Get(DatasetTrain, now.Add(2*time.Second), 20*time.Second)
	assert.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ShortName)
}
