package otp

// TripReference identifies the trip a vehicle is currently serving.
type TripReference struct {
	GtfsID        string `json:"gtfsId"`
	TripHeadsign  string `json:"tripHeadsign"`
	TripShortName string `json:"tripShortName"`
}

// VehiclePosition is one live vehicle as reported by the upstream
// vehiclePositions query.
type VehiclePosition struct {
	VehicleID string         `json:"vehicleId"`
	Lat       float64        `json:"lat"`
	Lon       float64        `json:"lon"`
	Speed     float64        `json:"speed"`
	Heading   float64        `json:"heading"`
	Trip      *TripReference `json:"trip"`
}

// TripID returns the trip identifier, or "" when the vehicle carries none.
func (v VehiclePosition) TripID() string {
	if v.Trip == nil {
		return ""
	}
	return v.Trip.GtfsID
}

// StopRef carries the stop fields requested by the trip query.
type StopRef struct {
	Name string `json:"name"`
}

// StopTime is one scheduled stop of a trip. Arrival and departure values are
// seconds since midnight of the service day; delays are seconds and absent
// when the upstream has no realtime data for the stop.
type StopTime struct {
	ArrivalDelay       *int    `json:"arrivalDelay"`
	DepartureDelay     *int    `json:"departureDelay"`
	ScheduledArrival   int     `json:"scheduledArrival"`
	RealtimeArrival    int     `json:"realtimeArrival"`
	ScheduledDeparture int     `json:"scheduledDeparture"`
	RealtimeDeparture  int     `json:"realtimeDeparture"`
	Stop               StopRef `json:"stop"`
}

// TripGeometry holds the route shape as an encoded polyline.
type TripGeometry struct {
	Points string `json:"points"`
}

// TripDetail is the timetable and geometry for one trip instance on a
// service day.
type TripDetail struct {
	GtfsID    string        `json:"gtfsId"`
	Geometry  *TripGeometry `json:"tripGeometry"`
	Stoptimes []StopTime    `json:"stoptimes"`
}

// GeometryPoints returns the encoded polyline, or "" when the trip has no
// geometry.
func (t *TripDetail) GeometryPoints() string {
	if t == nil || t.Geometry == nil {
		return ""
	}
	return t.Geometry.Points
}
