// Package sessions turns raw watch events into per-user sessions and
// session-level summaries. A session is a contiguous run of one user's events
// with no inactivity gap exceeding the configured threshold.
package sessions

import (
	"fmt"
	"sort"
	"time"

	"streampulse/internal/events"
	"streampulse/internal/timeframe"
)

// SessionizedEvent is a watch event enriched with its session assignment.
// Produced exclusively by Sessionize; read-only downstream.
type SessionizedEvent struct {
	events.WatchEvent
	SessionID       string        `json:"session_id"`
	SessionStart    time.Time     `json:"session_start"`
	CompletionRatio float64       `json:"completion_ratio"`
	WatchDay        timeframe.Day `json:"watch_day"`
}

// Sessionize assigns session identifiers to watch events. Input may arrive in
// any order; events are sorted by (user_id, event_time) before processing so
// the assignment is deterministic for any permutation of the same set. A new
// session starts on a user's first event or when the gap since their previous
// event strictly exceeds gap; a gap exactly equal keeps the session alive.
// Session ids are "<user_id>-<ordinal>" with ordinals starting at 1.
//
// Events with a non-positive video duration are rejected: the ingestion
// boundary guarantees the invariant, so hitting one here means an unvalidated
// record slipped through.
func Sessionize(input []events.WatchEvent, gap time.Duration) ([]SessionizedEvent, error) {
	if len(input) == 0 {
		return []SessionizedEvent{}, nil
	}

	sorted := make([]events.WatchEvent, len(input))
	copy(sorted, input)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		return sorted[i].EventTime.Before(sorted[j].EventTime)
	})

	counters := make(map[string]int)
	lastSeen := make(map[string]time.Time)
	currentSession := make(map[string]string)
	sessionStarts := make(map[string]time.Time)

	enriched := make([]SessionizedEvent, 0, len(sorted))
	for _, event := range sorted {
		if event.VideoDuration <= 0 {
			return nil, fmt.Errorf("sessionize: user %s video %s: video duration must be positive, got %v",
				event.UserID, event.VideoID, event.VideoDuration)
		}

		previous, seen := lastSeen[event.UserID]
		if !seen || event.EventTime.Sub(previous) > gap {
			counters[event.UserID]++
			sessionID := fmt.Sprintf("%s-%d", event.UserID, counters[event.UserID])
			currentSession[event.UserID] = sessionID
			sessionStarts[sessionID] = event.EventTime
		}
		lastSeen[event.UserID] = event.EventTime

		sessionID := currentSession[event.UserID]
		enriched = append(enriched, SessionizedEvent{
			WatchEvent:      event,
			SessionID:       sessionID,
			SessionStart:    sessionStarts[sessionID],
			CompletionRatio: event.CompletionRatio(),
			WatchDay:        timeframe.DayOf(event.EventTime),
		})
	}
	return enriched, nil
}
