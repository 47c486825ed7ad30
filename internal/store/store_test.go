package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
	"streampulse/internal/store"
	"streampulse/internal/testsupport"
)

func TestInsertAndFetchEvents(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	input := []events.WatchEvent{
		testsupport.WatchEventAt("u2", testsupport.Day(0).Add(12*time.Hour), 45, 90),
		testsupport.WatchEventAt("u1", testsupport.Day(0).Add(10*time.Hour), 30, 60),
	}
	require.NoError(t, store.InsertEvents(db, input))

	fetched, err := store.FetchAllEvents(db)
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	// Ordered by event time regardless of insertion order.
	assert.Equal(t, "u1", fetched[0].UserID)
	assert.Equal(t, "u2", fetched[1].UserID)
	assert.Equal(t, 30.0, fetched[0].WatchedSeconds)
	assert.True(t, fetched[0].EventTime.Before(fetched[1].EventTime))
}

func TestInsertEventsEmptyBatch(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	require.NoError(t, store.InsertEvents(db, nil))
}

func TestFetchEventsBetween(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	input := []events.WatchEvent{
		testsupport.WatchEventAt("u1", testsupport.Day(0).Add(10*time.Hour), 30, 60),
		testsupport.WatchEventAt("u1", testsupport.Day(1).Add(10*time.Hour), 30, 60),
		testsupport.WatchEventAt("u1", testsupport.Day(2).Add(10*time.Hour), 30, 60),
	}
	require.NoError(t, store.InsertEvents(db, input))

	from := testsupport.Day(1)
	to := testsupport.Day(1).Add(24 * time.Hour)
	fetched, err := store.FetchEventsBetween(db, from, to)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.True(t, testsupport.Day(1).Add(10*time.Hour).Equal(fetched[0].EventTime))
}

func TestProcessedTracking(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	input := []events.WatchEvent{
		testsupport.WatchEventAt("u1", testsupport.Day(0).Add(10*time.Hour), 30, 60),
		testsupport.WatchEventAt("u2", testsupport.Day(0).Add(11*time.Hour), 30, 60),
	}
	require.NoError(t, store.InsertEvents(db, input))

	pending, err := store.CountUnprocessedEvents(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	require.NoError(t, store.MarkAllEventsProcessed(db))

	pending, err = store.CountUnprocessedEvents(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}

func TestUpsertSummariesIsIdempotent(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	summary := sessions.SessionSummary{
		SessionID:              "u1-1",
		UserID:                 "u1",
		SessionStart:           testsupport.Day(0).Add(10 * time.Hour),
		SessionEnd:             testsupport.Day(0).Add(10*time.Hour + 5*time.Minute),
		VideosWatched:          2,
		CreatorsEngaged:        1,
		SessionWatchSeconds:    90,
		MeanCompletionRatio:    0.75,
		SessionDurationMinutes: 5,
	}
	require.NoError(t, store.UpsertSummaries(db, []sessions.SessionSummary{summary}))

	// A re-run with grown values must replace, not duplicate.
	summary.SessionEnd = testsupport.Day(0).Add(10*time.Hour + 15*time.Minute)
	summary.VideosWatched = 4
	summary.SessionWatchSeconds = 200
	summary.SessionDurationMinutes = 15
	require.NoError(t, store.UpsertSummaries(db, []sessions.SessionSummary{summary}))

	fetched, err := store.FetchSummaries(db)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, 4, fetched[0].VideosWatched)
	assert.Equal(t, 200.0, fetched[0].SessionWatchSeconds)
	assert.Equal(t, 15.0, fetched[0].SessionDurationMinutes)
}

func TestFetchSummariesOrdering(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	input := []sessions.SessionSummary{
		{SessionID: "u2-1", UserID: "u2", SessionStart: testsupport.Day(0)},
		{SessionID: "u1-2", UserID: "u1", SessionStart: testsupport.Day(1)},
		{SessionID: "u1-1", UserID: "u1", SessionStart: testsupport.Day(0)},
	}
	require.NoError(t, store.UpsertSummaries(db, input))

	fetched, err := store.FetchSummaries(db)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	assert.Equal(t, "u1-1", fetched[0].SessionID)
	assert.Equal(t, "u1-2", fetched[1].SessionID)
	assert.Equal(t, "u2-1", fetched[2].SessionID)
}
