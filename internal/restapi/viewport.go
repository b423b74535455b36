package restapi

import (
	"github.com/tidwall/rtree"
	"tracker.transitlive.org/internal/models"
	"tracker.transitlive.org/internal/utils"
)

// filterViewport returns the vehicles inside bounds, in snapshot order.
// Snapshots are small (hundreds of vehicles), but viewport queries arrive on
// every map pan, so the positions go through a spatial index.
func filterViewport(vehicles []models.EnrichedVehicle, bounds utils.CoordinateBounds) []models.EnrichedVehicle {
	var tree rtree.RTreeG[int]
	for i, v := range vehicles {
		point := [2]float64{v.Lon, v.Lat}
		tree.Insert(point, point, i)
	}

	inside := make([]bool, len(vehicles))
	tree.Search(
		[2]float64{bounds.SwLon, bounds.SwLat},
		[2]float64{bounds.NeLon, bounds.NeLat},
		func(min, max [2]float64, index int) bool {
			inside[index] = true
			return true
		},
	)

	filtered := make([]models.EnrichedVehicle, 0, len(vehicles))
	for i, v := range vehicles {
		if inside[i] {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
