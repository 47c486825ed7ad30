package timeframe_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/timeframe"
)

func TestDayOfFloorsToUTCMidnight(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "afternoon floors to same day",
			input:    time.Date(2024, 3, 1, 15, 45, 30, 0, time.UTC),
			expected: "2024-03-01",
		},
		{
			name:     "midnight stays",
			input:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: "2024-03-01",
		},
		{
			name:     "offset zones convert to UTC first",
			input:    time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("plus2", 2*3600)),
			expected: "2024-02-29",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			day := timeframe.DayOf(tc.input)
			assert.Equal(t, tc.expected, day.String())
			assert.Equal(t, time.UTC, day.Time().Location())
		})
	}
}

func TestDayArithmetic(t *testing.T) {
	day := timeframe.DayOf(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-08", day.AddDays(7).String())
	assert.Equal(t, "2024-02-29", day.AddDays(-1).String())
	assert.Equal(t, 7, day.AddDays(7).DaysSince(day))
	assert.Equal(t, 0, day.DaysSince(day))
	assert.True(t, day.Before(day.AddDays(1)))
	assert.True(t, day.AddDays(1).After(day))
	assert.False(t, day.IsZero())
	assert.True(t, timeframe.Day{}.IsZero())
}

func TestDayIsComparable(t *testing.T) {
	a := timeframe.DayOf(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	b := timeframe.DayOf(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC))

	assert.Equal(t, a, b)

	seen := map[timeframe.Day]int{a: 1}
	seen[b]++
	assert.Equal(t, 2, seen[a])
}

func TestTrailingWindow(t *testing.T) {
	last := timeframe.DayOf(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	window := timeframe.TrailingWindow(last, 7)

	assert.Equal(t, "2024-03-04", window.From.String())
	assert.Equal(t, "2024-03-10", window.To.String())

	assert.True(t, window.Contains(window.From))
	assert.True(t, window.Contains(window.To))
	assert.True(t, window.Contains(last.AddDays(-3)))
	assert.False(t, window.Contains(last.AddDays(-7)))
	assert.False(t, window.Contains(last.AddDays(1)))
}

func TestDayJSONRoundTrip(t *testing.T) {
	day := timeframe.DayOf(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC))

	data, err := json.Marshal(day)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(data))

	var decoded timeframe.Day
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, day, decoded)
}
