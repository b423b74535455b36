package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tracker.transitlive.org/internal/otp"
)

func timeInZone(t *testing.T, value string, offsetHours int) time.Time {
	t.Helper()
	zone := time.FixedZone("test", offsetHours*3600)
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", value, zone)
	if err != nil {
		t.Fatalf("parsing %q: %v", value, err)
	}
	return parsed
}

func intPtr(v int) *int { return &v }

func tripRef(id string) *otp.TripReference {
	return &otp.TripReference{GtfsID: id, TripHeadsign: "Budapest-Déli", TripShortName: "IC 123"}
}

func TestFormatClockTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{36300, "10:05"},
		{0, "00:00"},
		{59, "00:00"},
		{60, "00:01"},
		{86340, "23:59"},
		// Past-midnight times wrap into the next day.
		{86400, "00:00"},
		{90000, "01:00"},
		{-3600, "23:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClockTime(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestDelayMinutes(t *testing.T) {
	tests := []struct {
		name string
		st   otp.StopTime
		want *float64
	}{
		{"both absent", otp.StopTime{}, nil},
		{"arrival only", otp.StopTime{ArrivalDelay: intPtr(120)}, floatPtr(2)},
		{"departure only", otp.StopTime{DepartureDelay: intPtr(90)}, floatPtr(1.5)},
		{"max of both", otp.StopTime{ArrivalDelay: intPtr(60), DepartureDelay: intPtr(300)}, floatPtr(5)},
		{"early vehicle is negative", otp.StopTime{ArrivalDelay: intPtr(-120), DepartureDelay: intPtr(-180)}, floatPtr(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := delayMinutes(tt.st)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestJoinTripDetails(t *testing.T) {
	positions := []otp.VehiclePosition{
		{VehicleID: "V1", Trip: tripRef("1:10")},
		{VehicleID: "V2", Trip: tripRef("1:20")},
		{VehicleID: "V3"}, // no trip reference
		{VehicleID: "V4", Trip: tripRef("1:10")}, // same trip as V1
	}
	details := []*otp.TripDetail{
		{GtfsID: "1:10"},
		nil, // failed fetch slot
	}

	joined := joinTripDetails(positions, details)
	require.Len(t, joined, 4)

	assert.Same(t, details[0], joined[0].detail)
	assert.Nil(t, joined[1].detail)
	assert.Nil(t, joined[2].detail)
	// One detail enriches every vehicle on that trip.
	assert.Same(t, details[0], joined[3].detail)
}

func TestBuildEnriched(t *testing.T) {
	detail := &otp.TripDetail{
		GtfsID:   "1:10",
		Geometry: &otp.TripGeometry{Points: "_p~iF~ps|U"},
		Stoptimes: []otp.StopTime{
			{
				ScheduledArrival: 36000, RealtimeArrival: 36000,
				ScheduledDeparture: 36060, RealtimeDeparture: 36060,
				Stop: otp.StopRef{Name: "Kelenföld"},
			},
			{
				ArrivalDelay: intPtr(120), DepartureDelay: intPtr(300),
				ScheduledArrival: 39600, RealtimeArrival: 39720,
				ScheduledDeparture: 39660, RealtimeDeparture: 39960,
				Stop: otp.StopRef{Name: "Székesfehérvár"},
			},
		},
	}

	vehicle := buildEnriched(joinedVehicle{
		pos:    otp.VehiclePosition{VehicleID: "V1", Lat: 47.45, Lon: 18.9, Speed: 33.3, Heading: 240, Trip: tripRef("1:10")},
		detail: detail,
	})

	assert.Equal(t, 47.45, vehicle.Lat)
	assert.Equal(t, "Budapest-Déli", vehicle.Headsign)
	assert.Equal(t, "IC 123", vehicle.ShortName)

	// start is the first stop, route the geometry verbatim, delay the final
	// stop's worse delay in minutes.
	assert.Equal(t, "Kelenföld", vehicle.Start)
	assert.Equal(t, "_p~iF~ps|U", vehicle.Route)
	require.NotNil(t, vehicle.Delay)
	assert.Equal(t, 5.0, *vehicle.Delay)

	require.Len(t, vehicle.Timetable, 2)
	assert.Equal(t, "Kelenföld", vehicle.Timetable[0].Place)
	assert.Equal(t, "10:00", vehicle.Timetable[0].ExpectedArrival)
	assert.Equal(t, "11:00", vehicle.Timetable[1].ExpectedArrival)
	assert.Equal(t, "11:02", vehicle.Timetable[1].RealArrival)
	assert.Equal(t, "11:01", vehicle.Timetable[1].ExpectedDeparture)
	assert.Equal(t, "11:06", vehicle.Timetable[1].RealDeparture)
}

func TestBuildEnrichedWithoutDetail(t *testing.T) {
	vehicle := buildEnriched(joinedVehicle{
		pos: otp.VehiclePosition{VehicleID: "V3", Lat: 46.0, Lon: 18.0, Trip: tripRef("1:30")},
	})

	assert.Nil(t, vehicle.Delay)
	assert.Empty(t, vehicle.Route)
	assert.Empty(t, vehicle.Start)
	assert.NotNil(t, vehicle.Timetable)
	assert.Empty(t, vehicle.Timetable)
	// Trip reference fields still surface even without enrichment data.
	assert.Equal(t, "IC 123", vehicle.ShortName)
}

func TestServiceDayAndSecondsSinceMidnight(t *testing.T) {
	// 2025-08-29 23:30:00 CEST is 21:30:00 UTC; both helpers render in UTC.
	now := timeInZone(t, "2025-08-29T23:30:00", 2)

	assert.Equal(t, "2025-08-29", serviceDay(now))
	assert.Equal(t, 21*3600+30*60, secondsSinceMidnight(now))
}
