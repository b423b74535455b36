package tracker

import (
	"sync"
	"time"

	"tracker.transitlive.org/internal/models"
)

// Dataset names one cached vehicle collection.
type Dataset string

const (
	DatasetTrain Dataset = "train"
	DatasetBus   Dataset = "bus"
)

type snapshotEntry struct {
	vehicles   []models.EnrichedVehicle
	computedAt time.Time
}

// SnapshotCache holds the last successfully computed snapshot per dataset.
// Entries are replaced whole; readers never observe a partially built
// snapshot. The key space is bounded by the two datasets.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[Dataset]snapshotEntry
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{entries: make(map[Dataset]snapshotEntry)}
}

// Get returns the snapshot for key when it is still fresh: a hit requires
// now minus computedAt to be strictly within the window. At or past the
// boundary the entry is a miss.
func (c *SnapshotCache) Get(key Dataset, now time.Time, window time.Duration) ([]models.EnrichedVehicle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || now.Sub(entry.computedAt) >= window {
		return nil, false
	}
	return entry.vehicles, true
}

// Put atomically replaces the entry for key.
func (c *SnapshotCache) Put(key Dataset, vehicles []models.EnrichedVehicle, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = snapshotEntry{vehicles: vehicles, computedAt: now}
}
