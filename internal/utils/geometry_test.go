package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

func TestQuadrants(t *testing.T) {
	bounds := CoordinateBounds{SwLat: 45.74, SwLon: 16.11, NeLat: 48.58, NeLon: 22.90}
	quadrants := bounds.Quadrants()

	midLat := (45.74 + 48.58) / 2
	midLon := (16.11 + 22.90) / 2

	expected := [4]CoordinateBounds{
		{SwLat: 45.74, SwLon: 16.11, NeLat: midLat, NeLon: midLon},
		{SwLat: 45.74, SwLon: midLon, NeLat: midLat, NeLon: 22.90},
		{SwLat: midLat, SwLon: 16.11, NeLat: 48.58, NeLon: midLon},
		{SwLat: midLat, SwLon: midLon, NeLat: 48.58, NeLon: 22.90},
	}
	assert.Equal(t, expected, quadrants)

	for i, q := range quadrants {
		assert.True(t, q.IsValid(), "quadrant %d should be valid", i)
	}
}

func TestParseBounds(t *testing.T) {
	bounds, err := ParseBounds("45.74,16.11,48.58,22.90")
	require.NoError(t, err)
	assert.Equal(t, CoordinateBounds{SwLat: 45.74, SwLon: 16.11, NeLat: 48.58, NeLon: 22.90}, bounds)

	_, err = ParseBounds("45.74,16.11,48.58")
	assert.Error(t, err)

	_, err = ParseBounds("45.74,16.11,48.58,not-a-number")
	assert.Error(t, err)

	// Inverted corners are rejected.
	_, err = ParseBounds("48.58,22.90,45.74,16.11")
	assert.Error(t, err)
}

func TestDecodeGeometry(t *testing.T) {
	coords := [][]float64{{47.49801, 19.04036}, {47.5, 19.05}, {47.51, 19.06}}
	encoded := string(polyline.EncodeCoords(coords))

	decoded := DecodeGeometry(encoded)
	require.Len(t, decoded, 3)
	assert.InDelta(t, 47.49801, decoded[0][0], 1e-5)
	assert.InDelta(t, 19.04036, decoded[0][1], 1e-5)

	assert.Empty(t, DecodeGeometry(""))
	assert.Empty(t, DecodeGeometry("\x7f\x7f\x7f"))
}
