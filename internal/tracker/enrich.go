package tracker

import (
	"fmt"
	"time"

	"tracker.transitlive.org/internal/models"
	"tracker.transitlive.org/internal/otp"
)

// joinedVehicle pairs a raw position with its resolved trip detail. The
// detail stays nil for vehicles without a trip id or whose trip query failed.
type joinedVehicle struct {
	pos    otp.VehiclePosition
	detail *otp.TripDetail
}

// joinTripDetails matches each position against the fetched details by trip
// identifier. One detail may match several vehicles; a vehicle with no match
// is carried through with a nil detail.
func joinTripDetails(positions []otp.VehiclePosition, details []*otp.TripDetail) []joinedVehicle {
	byTripID := make(map[string]*otp.TripDetail, len(details))
	for _, detail := range details {
		if detail != nil && detail.GtfsID != "" {
			byTripID[detail.GtfsID] = detail
		}
	}

	joined := make([]joinedVehicle, len(positions))
	for i, pos := range positions {
		joined[i] = joinedVehicle{pos: pos, detail: byTripID[pos.TripID()]}
	}
	return joined
}

// buildEnriched constructs the output record for one vehicle. It is a pure
// function of the join result; upstream structs are never mutated.
func buildEnriched(j joinedVehicle) models.EnrichedVehicle {
	vehicle := models.EnrichedVehicle{
		Lat:       j.pos.Lat,
		Lon:       j.pos.Lon,
		Speed:     j.pos.Speed,
		Heading:   j.pos.Heading,
		Timetable: []models.TimetableEntry{},
	}
	if j.pos.Trip != nil {
		vehicle.Headsign = j.pos.Trip.TripHeadsign
		vehicle.ShortName = j.pos.Trip.TripShortName
	}

	if j.detail == nil || len(j.detail.Stoptimes) == 0 {
		return vehicle
	}

	stoptimes := j.detail.Stoptimes
	final := stoptimes[len(stoptimes)-1]

	vehicle.Delay = delayMinutes(final)
	vehicle.Route = j.detail.GeometryPoints()
	vehicle.Start = stoptimes[0].Stop.Name

	vehicle.Timetable = make([]models.TimetableEntry, len(stoptimes))
	for i, st := range stoptimes {
		vehicle.Timetable[i] = models.TimetableEntry{
			Place:             st.Stop.Name,
			ExpectedArrival:   FormatClockTime(st.ScheduledArrival),
			RealArrival:       FormatClockTime(st.RealtimeArrival),
			ExpectedDeparture: FormatClockTime(st.ScheduledDeparture),
			RealDeparture:     FormatClockTime(st.RealtimeDeparture),
		}
	}
	return vehicle
}

// delayMinutes derives the vehicle delay from the final stop: the larger of
// the arrival and departure delays, in minutes. Nil when the upstream
// reported neither; when only one is present it alone determines the value.
func delayMinutes(final otp.StopTime) *float64 {
	if final.ArrivalDelay == nil && final.DepartureDelay == nil {
		return nil
	}
	seconds := 0
	switch {
	case final.ArrivalDelay == nil:
		seconds = *final.DepartureDelay
	case final.DepartureDelay == nil:
		seconds = *final.ArrivalDelay
	default:
		seconds = max(*final.ArrivalDelay, *final.DepartureDelay)
	}
	minutes := float64(seconds) / 60
	return &minutes
}

// FormatClockTime renders seconds-since-midnight as "HH:MM" in UTC.
// Values past 24h wrap into the next day (90000 -> "01:00"), matching GTFS
// time-of-day semantics.
func FormatClockTime(seconds int) string {
	s := seconds % 86400
	if s < 0 {
		s += 86400
	}
	return fmt.Sprintf("%02d:%02d", s/3600, (s%3600)/60)
}

// serviceDay is the civil date (UTC) used to disambiguate trip instances.
func serviceDay(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func secondsSinceMidnight(now time.Time) int {
	utc := now.UTC()
	return utc.Hour()*3600 + utc.Minute()*60 + utc.Second()
}
