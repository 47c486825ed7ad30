package analytics

import (
	"sort"

	"streampulse/internal/events"
	"streampulse/internal/timeframe"
)

// DailyActiveCount is the distinct active-user count for one calendar day.
type DailyActiveCount struct {
	Date        timeframe.Day `json:"date"`
	ActiveUsers int           `json:"active_users"`
}

// DailyActiveUsers counts distinct users per UTC calendar day, sorted by date
// ascending.
func DailyActiveUsers(evts []events.WatchEvent) []DailyActiveCount {
	if len(evts) == 0 {
		return []DailyActiveCount{}
	}

	activeByDay := make(map[timeframe.Day]map[string]struct{})
	for _, event := range evts {
		day := timeframe.DayOf(event.EventTime)
		if activeByDay[day] == nil {
			activeByDay[day] = make(map[string]struct{})
		}
		activeByDay[day][event.UserID] = struct{}{}
	}

	counts := make([]DailyActiveCount, 0, len(activeByDay))
	for day, users := range activeByDay {
		counts = append(counts, DailyActiveCount{Date: day, ActiveUsers: len(users)})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Date.Before(counts[j].Date)
	})
	return counts
}
