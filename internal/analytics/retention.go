package analytics

import (
	"streampulse/internal/events"
	"streampulse/internal/timeframe"
)

// DefaultRetentionOffsets are the day offsets reported when callers do not
// supply their own.
var DefaultRetentionOffsets = []int{1, 7, 30}

// RetentionPoint is the retention rate for one day offset.
type RetentionPoint struct {
	Day           int     `json:"day"`
	RetentionRate float64 `json:"retention_rate"`
}

// RetentionCurve computes first-seen cohort retention. Each user's activity
// days are expressed as offsets from their own first observed day; the rate
// for offset d is the fraction of the cohort active exactly d days after
// first being seen. The cohort denominator is fixed across all offsets.
func RetentionCurve(evts []events.WatchEvent, days []int) []RetentionPoint {
	if len(days) == 0 {
		days = DefaultRetentionOffsets
	}

	points := make([]RetentionPoint, 0, len(days))
	if len(evts) == 0 {
		for _, day := range days {
			points = append(points, RetentionPoint{Day: day, RetentionRate: 0.0})
		}
		return points
	}

	firstSeen := make(map[string]timeframe.Day)
	activeDays := make(map[string]map[timeframe.Day]struct{})
	for _, event := range evts {
		day := timeframe.DayOf(event.EventTime)
		if activeDays[event.UserID] == nil {
			activeDays[event.UserID] = make(map[timeframe.Day]struct{})
		}
		activeDays[event.UserID][day] = struct{}{}
		if first, ok := firstSeen[event.UserID]; !ok || day.Before(first) {
			firstSeen[event.UserID] = day
		}
	}

	cohortSize := len(firstSeen)
	for _, day := range days {
		retained := 0
		for userID, first := range firstSeen {
			target := first.AddDays(day)
			if _, active := activeDays[userID][target]; active {
				retained++
			}
		}
		points = append(points, RetentionPoint{
			Day:           day,
			RetentionRate: float64(retained) / float64(cohortSize),
		})
	}
	return points
}
