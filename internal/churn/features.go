// Package churn builds per-user engagement features, labels retention against
// a horizon, and fits a small logistic-regression classifier over them. The
// model is illustrative; sessionization and aggregation correctness matter
// more than classifier quality.
package churn

import (
	"time"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
	"streampulse/internal/timeframe"
)

// FeatureNames is the fixed feature order used by every dataset.
var FeatureNames = []string{
	"sessions",
	"avg_session_minutes",
	"total_watch_seconds",
	"mean_completion_ratio",
}

// BuildFeatures sessionizes and aggregates the events, then reduces each
// user's session summaries to one feature vector in FeatureNames order.
func BuildFeatures(evts []events.WatchEvent, gap time.Duration) (map[string][]float64, error) {
	sessionized, err := sessions.Sessionize(evts, gap)
	if err != nil {
		return nil, err
	}
	summaries := sessions.Aggregate(sessionized)

	type accumulator struct {
		count         int
		minutes       float64
		watchSeconds  float64
		completionSum float64
	}
	byUser := make(map[string]*accumulator)
	for _, summary := range summaries {
		acc := byUser[summary.UserID]
		if acc == nil {
			acc = &accumulator{}
			byUser[summary.UserID] = acc
		}
		acc.count++
		acc.minutes += summary.SessionDurationMinutes
		acc.watchSeconds += summary.SessionWatchSeconds
		acc.completionSum += summary.MeanCompletionRatio
	}

	features := make(map[string][]float64, len(byUser))
	for userID, acc := range byUser {
		n := float64(acc.count)
		features[userID] = []float64{
			n,
			acc.minutes / n,
			acc.watchSeconds,
			acc.completionSum / n,
		}
	}
	return features, nil
}

// LabelRetention labels each user 1 when the whole-day span between their
// first and last active day is at least horizonDays, else 0. A user seen on a
// single day is retained only for a zero horizon.
func LabelRetention(evts []events.WatchEvent, horizonDays int) map[string]int {
	firstSeen := make(map[string]timeframe.Day)
	lastSeen := make(map[string]timeframe.Day)
	for _, event := range evts {
		day := timeframe.DayOf(event.EventTime)
		if first, ok := firstSeen[event.UserID]; !ok || day.Before(first) {
			firstSeen[event.UserID] = day
		}
		if last, ok := lastSeen[event.UserID]; !ok || day.After(last) {
			lastSeen[event.UserID] = day
		}
	}

	labels := make(map[string]int, len(firstSeen))
	for userID, first := range firstSeen {
		if lastSeen[userID].DaysSince(first) >= horizonDays {
			labels[userID] = 1
		} else {
			labels[userID] = 0
		}
	}
	return labels
}
