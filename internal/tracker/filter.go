package tracker

// conclusionGraceSeconds is how long a trip keeps being served after its
// final stop's realtime departure has passed.
const conclusionGraceSeconds = 300

// isConcluded reports whether the trip's final realtime departure lies more
// than the grace period before the current time of day. Vehicles without a
// resolved detail are never concluded by this rule.
//
// The comparison is plain time-of-day subtraction; a trip ending just before
// midnight observed just after it will misclassify. That edge is knowingly
// left as-is.
func isConcluded(j joinedVehicle, nowSeconds int) bool {
	if j.detail == nil || len(j.detail.Stoptimes) == 0 {
		return false
	}
	final := j.detail.Stoptimes[len(j.detail.Stoptimes)-1]
	return final.RealtimeDeparture-nowSeconds <= -conclusionGraceSeconds
}

// filterConcluded drops vehicles whose trip has effectively ended, keeping
// input order for the rest.
func filterConcluded(joined []joinedVehicle, nowSeconds int) []joinedVehicle {
	relevant := make([]joinedVehicle, 0, len(joined))
	for _, j := range joined {
		if !isConcluded(j, nowSeconds) {
			relevant = append(relevant, j)
		}
	}
	return relevant
}
