// Package models defines the JSON records served by the HTTP API.
package models

// TimetableEntry is one stop of a trip's timetable. All four times are
// formatted "HH:MM" in UTC.
type TimetableEntry struct {
	Place             string `json:"place"`
	ExpectedArrival   string `json:"expectedArrival"`
	RealArrival       string `json:"realArrival"`
	ExpectedDeparture string `json:"expectedDeparture"`
	RealDeparture     string `json:"realDeparture"`
}

// EnrichedVehicle is a live vehicle position merged with its trip's timetable
// and route geometry. The upstream vehicle and trip identifiers are internal
// to the pipeline and deliberately absent here.
//
// Delay is in minutes, negative when the vehicle runs early, and null when the
// upstream reported no delay for the final stop. Route is the trip geometry as
// an encoded polyline, verbatim from upstream. Vehicles whose trip could not
// be resolved keep zero values for the enrichment fields.
type EnrichedVehicle struct {
	Lat       float64          `json:"lat"`
	Lon       float64          `json:"lon"`
	Speed     float64          `json:"speed"`
	Heading   float64          `json:"heading"`
	Headsign  string           `json:"headsign,omitempty"`
	ShortName string           `json:"shortName,omitempty"`
	Delay     *float64         `json:"delay"`
	Route     string           `json:"route"`
	Start     string           `json:"start"`
	Timetable []TimetableEntry `json:"timetable"`
}

// DecodedVehicle is the geometry=points rendering of an EnrichedVehicle:
// the encoded polyline is replaced by explicit [lat, lon] pairs.
type DecodedVehicle struct {
	Lat         float64          `json:"lat"`
	Lon         float64          `json:"lon"`
	Speed       float64          `json:"speed"`
	Heading     float64          `json:"heading"`
	Headsign    string           `json:"headsign,omitempty"`
	ShortName   string           `json:"shortName,omitempty"`
	Delay       *float64         `json:"delay"`
	RoutePoints [][]float64      `json:"routePoints"`
	Start       string           `json:"start"`
	Timetable   []TimetableEntry `json:"timetable"`
}

// ErrorResponse is the body of every non-200 API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
