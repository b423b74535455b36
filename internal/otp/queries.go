package otp

import (
	"tracker.transitlive.org/internal/utils"
)

// Query is one GraphQL operation: the document text plus its variables map.
// Parameters always travel as variables, never interpolated into the text.
type Query struct {
	OperationName string
	Text          string
	Variables     map[string]any
}

const vehiclePositionsQueryText = `
query VehiclePositions($swLat: Float!, $swLon: Float!, $neLat: Float!, $neLon: Float!, $modes: [Mode!]) {
  vehiclePositions(swLat: $swLat, swLon: $swLon, neLat: $neLat, neLon: $neLon, modes: $modes) {
    vehicleId
    lat
    lon
    speed
    heading
    trip {
      gtfsId
      tripHeadsign
      tripShortName
    }
  }
}`

const tripQueryText = `
query Trip($id: String!, $serviceDay: String!) {
  trip(id: $id, serviceDay: $serviceDay) {
    gtfsId
    tripGeometry {
      points
    }
    stoptimes {
      arrivalDelay
      departureDelay
      scheduledArrival
      realtimeArrival
      scheduledDeparture
      realtimeDeparture
      stop {
        name
      }
    }
  }
}`

// VehiclePositionsQuery builds the bounded vehicle-positions operation.
func VehiclePositionsQuery(bounds utils.CoordinateBounds, modes []string) Query {
	return Query{
		OperationName: "VehiclePositions",
		Text:          vehiclePositionsQueryText,
		Variables: map[string]any{
			"swLat": bounds.SwLat,
			"swLon": bounds.SwLon,
			"neLat": bounds.NeLat,
			"neLon": bounds.NeLon,
			"modes": modes,
		},
	}
}

// TripQuery builds the trip-detail operation for one trip instance on the
// given service day (YYYY-MM-DD).
func TripQuery(tripID, serviceDay string) Query {
	return Query{
		OperationName: "Trip",
		Text:          tripQueryText,
		Variables: map[string]any{
			"id":         tripID,
			"serviceDay": serviceDay,
		},
	}
}
