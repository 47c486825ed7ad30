package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
	"streampulse/internal/testsupport"
)

func TestAggregateSummarizesSessions(t *testing.T) {
	base := testsupport.Day(0).Add(10 * time.Hour)

	e1 := testsupport.CreatorEventAt("u1", "c1", base, 30, 60)
	e2 := testsupport.CreatorEventAt("u1", "c2", base.Add(10*time.Minute), 60, 60)
	e2.VideoID = "v2"
	e3 := testsupport.CreatorEventAt("u1", "c1", base.Add(2*time.Hour), 12, 60)

	sessionized, err := sessions.Sessionize([]events.WatchEvent{e1, e2, e3}, gap)
	require.NoError(t, err)

	summaries := sessions.Aggregate(sessionized)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, "u1-1", first.SessionID)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, base, first.SessionStart)
	assert.Equal(t, base.Add(10*time.Minute), first.SessionEnd)
	assert.Equal(t, 2, first.VideosWatched)
	assert.Equal(t, 2, first.CreatorsEngaged)
	assert.Equal(t, 90.0, first.SessionWatchSeconds)
	assert.InDelta(t, 0.75, first.MeanCompletionRatio, 1e-9)
	assert.Equal(t, 10.0, first.SessionDurationMinutes)

	second := summaries[1]
	assert.Equal(t, "u1-2", second.SessionID)
	assert.Equal(t, 1, second.VideosWatched)
	assert.Equal(t, 0.0, second.SessionDurationMinutes)
	assert.InDelta(t, 0.2, second.MeanCompletionRatio, 1e-9)
}

func TestAggregateCountsDistinctVideos(t *testing.T) {
	base := testsupport.Day(1).Add(12 * time.Hour)

	// Same video watched twice in one session counts once.
	input := []events.WatchEvent{
		testsupport.WatchEventAt("u1", base, 30, 60),
		testsupport.WatchEventAt("u1", base.Add(2*time.Minute), 30, 60),
	}
	sessionized, err := sessions.Sessionize(input, gap)
	require.NoError(t, err)

	summaries := sessions.Aggregate(sessionized)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].VideosWatched)
	assert.Equal(t, 1, summaries[0].CreatorsEngaged)
	assert.Equal(t, 60.0, summaries[0].SessionWatchSeconds)
}

func TestAggregateOrdering(t *testing.T) {
	base := testsupport.Day(0).Add(8 * time.Hour)

	input := []events.WatchEvent{
		testsupport.WatchEventAt("u2", base, 30, 60),
		testsupport.WatchEventAt("u1", base.Add(4*time.Hour), 30, 60),
		testsupport.WatchEventAt("u1", base, 30, 60),
	}
	sessionized, err := sessions.Sessionize(input, gap)
	require.NoError(t, err)

	summaries := sessions.Aggregate(sessionized)
	require.Len(t, summaries, 3)
	assert.Equal(t, "u1-1", summaries[0].SessionID)
	assert.Equal(t, "u1-2", summaries[1].SessionID)
	assert.Equal(t, "u2-1", summaries[2].SessionID)
	assert.True(t, summaries[0].SessionStart.Before(summaries[1].SessionStart))
}

func TestAggregateEmptyInput(t *testing.T) {
	assert.Empty(t, sessions.Aggregate([]sessions.SessionizedEvent{}))
}

func TestAggregatePanicsOnCorruptSession(t *testing.T) {
	base := testsupport.Day(0)

	corrupt := []sessions.SessionizedEvent{
		{
			WatchEvent:   testsupport.WatchEventAt("u1", base, 30, 60),
			SessionID:    "u1-1",
			SessionStart: base,
		},
		{
			WatchEvent:   testsupport.WatchEventAt("u2", base, 30, 60),
			SessionID:    "u1-1",
			SessionStart: base,
		},
	}

	assert.Panics(t, func() { sessions.Aggregate(corrupt) })
}
