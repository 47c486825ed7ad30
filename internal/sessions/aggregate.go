package sessions

import (
	"fmt"
	"sort"
	"time"
)

// SessionSummary is one row per (user_id, session_id).
type SessionSummary struct {
	SessionID              string    `json:"session_id"`
	UserID                 string    `json:"user_id"`
	SessionStart           time.Time `json:"session_start"`
	SessionEnd             time.Time `json:"session_end"`
	VideosWatched          int       `json:"videos_watched"`
	CreatorsEngaged        int       `json:"creators_engaged"`
	SessionWatchSeconds    float64   `json:"session_watch_seconds"`
	MeanCompletionRatio    float64   `json:"mean_completion_ratio"`
	SessionDurationMinutes float64   `json:"session_duration_minutes"`
}

// Aggregate reduces sessionized events into one summary per session. Output is
// sorted by (user_id, session_start) so downstream consumers and test fixtures
// are reproducible.
//
// All members of a session must share the same user id and session start;
// a disagreement means the sessionizer is broken, so Aggregate panics rather
// than producing silently corrected numbers.
func Aggregate(sessionized []SessionizedEvent) []SessionSummary {
	if len(sessionized) == 0 {
		return []SessionSummary{}
	}

	groups := make(map[string][]SessionizedEvent)
	for _, event := range sessionized {
		groups[event.SessionID] = append(groups[event.SessionID], event)
	}

	summaries := make([]SessionSummary, 0, len(groups))
	for sessionID, members := range groups {
		first := members[0]
		videos := make(map[string]struct{})
		creators := make(map[string]struct{})
		var watchSeconds, completionSum float64
		sessionEnd := first.EventTime

		for _, member := range members {
			if member.UserID != first.UserID {
				panic(fmt.Sprintf("session %s mixes users %s and %s", sessionID, first.UserID, member.UserID))
			}
			if !member.SessionStart.Equal(first.SessionStart) {
				panic(fmt.Sprintf("session %s has conflicting session starts %v and %v",
					sessionID, first.SessionStart, member.SessionStart))
			}
			videos[member.VideoID] = struct{}{}
			creators[member.CreatorID] = struct{}{}
			watchSeconds += member.WatchedSeconds
			completionSum += member.CompletionRatio
			if member.EventTime.After(sessionEnd) {
				sessionEnd = member.EventTime
			}
		}

		summaries = append(summaries, SessionSummary{
			SessionID:              sessionID,
			UserID:                 first.UserID,
			SessionStart:           first.SessionStart,
			SessionEnd:             sessionEnd,
			VideosWatched:          len(videos),
			CreatorsEngaged:        len(creators),
			SessionWatchSeconds:    watchSeconds,
			MeanCompletionRatio:    completionSum / float64(len(members)),
			SessionDurationMinutes: sessionEnd.Sub(first.SessionStart).Minutes(),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UserID != summaries[j].UserID {
			return summaries[i].UserID < summaries[j].UserID
		}
		return summaries[i].SessionStart.Before(summaries[j].SessionStart)
	})
	return summaries
}
