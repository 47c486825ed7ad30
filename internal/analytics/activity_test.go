package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/analytics"
	"streampulse/internal/events"
	"streampulse/internal/testsupport"
)

func TestDailyActiveUsers(t *testing.T) {
	noon := 12 * time.Hour

	evts := []events.WatchEvent{
		testsupport.WatchEventAt("u1", testsupport.Day(1).Add(noon), 30, 60),
		testsupport.WatchEventAt("u1", testsupport.Day(1).Add(noon+time.Hour), 30, 60),
		testsupport.WatchEventAt("u2", testsupport.Day(1).Add(noon), 30, 60),
		testsupport.WatchEventAt("u1", testsupport.Day(0).Add(noon), 30, 60),
	}

	counts := analytics.DailyActiveUsers(evts)
	require.Len(t, counts, 2)

	// Sorted ascending by date; repeat events by one user count once.
	assert.Equal(t, "2024-03-01", counts[0].Date.String())
	assert.Equal(t, 1, counts[0].ActiveUsers)
	assert.Equal(t, "2024-03-02", counts[1].Date.String())
	assert.Equal(t, 2, counts[1].ActiveUsers)
}

func TestDailyActiveUsersEmptyInput(t *testing.T) {
	assert.Empty(t, analytics.DailyActiveUsers(nil))
}
