package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"
)

// CoordinateBounds is a geographic bounding box expressed as its south-west
// and north-east corners.
type CoordinateBounds struct {
	SwLat float64 `yaml:"swLat" validate:"min=-90,max=90"`
	SwLon float64 `yaml:"swLon" validate:"min=-180,max=180"`
	NeLat float64 `yaml:"neLat" validate:"min=-90,max=90"`
	NeLon float64 `yaml:"neLon" validate:"min=-180,max=180"`
}

// IsValid reports whether the box is non-degenerate and ordered south-west
// to north-east.
func (b CoordinateBounds) IsValid() bool {
	return b.SwLat < b.NeLat && b.SwLon < b.NeLon
}

// Quadrants splits the box into four sub-boxes by bisecting its latitude and
// longitude ranges. Order: south-west, south-east, north-west, north-east.
func (b CoordinateBounds) Quadrants() [4]CoordinateBounds {
	midLat := (b.SwLat + b.NeLat) / 2
	midLon := (b.SwLon + b.NeLon) / 2
	return [4]CoordinateBounds{
		{SwLat: b.SwLat, SwLon: b.SwLon, NeLat: midLat, NeLon: midLon},
		{SwLat: b.SwLat, SwLon: midLon, NeLat: midLat, NeLon: b.NeLon},
		{SwLat: midLat, SwLon: b.SwLon, NeLat: b.NeLat, NeLon: midLon},
		{SwLat: midLat, SwLon: midLon, NeLat: b.NeLat, NeLon: b.NeLon},
	}
}

// ParseBounds parses "swLat,swLon,neLat,neLon" into a CoordinateBounds.
func ParseBounds(s string) (CoordinateBounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return CoordinateBounds{}, fmt.Errorf("expected swLat,swLon,neLat,neLon, got %q", s)
	}
	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return CoordinateBounds{}, fmt.Errorf("invalid coordinate %q: %w", part, err)
		}
		values[i] = v
	}
	bounds := CoordinateBounds{SwLat: values[0], SwLon: values[1], NeLat: values[2], NeLon: values[3]}
	if !bounds.IsValid() {
		return CoordinateBounds{}, fmt.Errorf("bounds %q are not ordered south-west to north-east", s)
	}
	return bounds, nil
}

// DecodeGeometry decodes an encoded polyline into [lat, lon] pairs. Empty or
// malformed geometry decodes to an empty slice.
func DecodeGeometry(points string) [][]float64 {
	if points == "" {
		return [][]float64{}
	}
	coords, _, err := polyline.DecodeCoords([]byte(points))
	if err != nil || coords == nil {
		return [][]float64{}
	}
	return coords
}
