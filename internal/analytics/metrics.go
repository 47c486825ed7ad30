// Package analytics derives engagement KPIs from watch events and session
// summaries. Every function is a pure pass over its input and returns a
// well-defined zero result for empty input.
package analytics

import (
	"fmt"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
	"streampulse/internal/timeframe"
)

// DefaultDropOffThresholds are the completion thresholds used when callers do
// not supply their own.
var DefaultDropOffThresholds = []float64{0.25, 0.5, 0.75}

// CompletionRate returns the mean clamped completion ratio across all events,
// or 0 when there are none.
func CompletionRate(evts []events.WatchEvent) float64 {
	if len(evts) == 0 {
		return 0.0
	}
	var sum float64
	for _, event := range evts {
		sum += event.CompletionRatio()
	}
	return sum / float64(len(evts))
}

// DropOffPositions returns, for each threshold, the fraction of events whose
// completion ratio is strictly below it. Keys are labelled below_<percent>,
// e.g. below_25 for a 0.25 threshold.
func DropOffPositions(evts []events.WatchEvent, thresholds []float64) map[string]float64 {
	if len(thresholds) == 0 {
		thresholds = DefaultDropOffThresholds
	}

	result := make(map[string]float64, len(thresholds))
	for _, threshold := range thresholds {
		result[dropOffLabel(threshold)] = 0.0
	}
	if len(evts) == 0 {
		return result
	}

	for _, threshold := range thresholds {
		below := 0
		for _, event := range evts {
			if event.CompletionRatio() < threshold {
				below++
			}
		}
		result[dropOffLabel(threshold)] = float64(below) / float64(len(evts))
	}
	return result
}

func dropOffLabel(threshold float64) string {
	return fmt.Sprintf("below_%d", int(threshold*100))
}

// AverageSessionDuration returns the mean session duration in minutes, or 0
// for an empty input.
func AverageSessionDuration(summaries []sessions.SessionSummary) float64 {
	if len(summaries) == 0 {
		return 0.0
	}
	var sum float64
	for _, summary := range summaries {
		sum += summary.SessionDurationMinutes
	}
	return sum / float64(len(summaries))
}

// DAUWAUStat holds daily and weekly active user counts for the latest day in
// the data, and their ratio.
type DAUWAUStat struct {
	DAU   int     `json:"dau"`
	WAU   int     `json:"wau"`
	Ratio float64 `json:"ratio"`
}

// DAUWAURatio computes active-user stickiness for the latest calendar day in
// the event set: DAU is the distinct users active that day, WAU the distinct
// users active in the 7-day window ending on it (inclusive). DAU is a subset
// of WAU by construction, so the ratio never exceeds 1.
func DAUWAURatio(evts []events.WatchEvent) DAUWAUStat {
	if len(evts) == 0 {
		return DAUWAUStat{}
	}

	var latest timeframe.Day
	for _, event := range evts {
		day := timeframe.DayOf(event.EventTime)
		if latest.IsZero() || day.After(latest) {
			latest = day
		}
	}

	window := timeframe.TrailingWindow(latest, 7)
	dauUsers := make(map[string]struct{})
	wauUsers := make(map[string]struct{})
	for _, event := range evts {
		day := timeframe.DayOf(event.EventTime)
		if day == latest {
			dauUsers[event.UserID] = struct{}{}
		}
		if window.Contains(day) {
			wauUsers[event.UserID] = struct{}{}
		}
	}

	stat := DAUWAUStat{DAU: len(dauUsers), WAU: len(wauUsers)}
	if stat.WAU > 0 {
		stat.Ratio = float64(stat.DAU) / float64(stat.WAU)
	}
	return stat
}
