package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/events"
)

func validEvent() events.WatchEvent {
	return events.WatchEvent{
		UserID:         "u1",
		VideoID:        "v1",
		CreatorID:      "c1",
		EventTime:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		WatchedSeconds: 30,
		VideoDuration:  60,
	}
}

func TestWatchEventValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*events.WatchEvent)
		expectedField string
	}{
		{name: "valid event passes", mutate: func(e *events.WatchEvent) {}},
		{
			name:          "missing user id",
			mutate:        func(e *events.WatchEvent) { e.UserID = "  " },
			expectedField: "user_id",
		},
		{
			name:          "missing video id",
			mutate:        func(e *events.WatchEvent) { e.VideoID = "" },
			expectedField: "video_id",
		},
		{
			name:          "missing creator id",
			mutate:        func(e *events.WatchEvent) { e.CreatorID = "" },
			expectedField: "creator_id",
		},
		{
			name:          "zero event time",
			mutate:        func(e *events.WatchEvent) { e.EventTime = time.Time{} },
			expectedField: "event_time",
		},
		{
			name:          "negative watched seconds",
			mutate:        func(e *events.WatchEvent) { e.WatchedSeconds = -1 },
			expectedField: "watched_seconds",
		},
		{
			name:          "zero video duration",
			mutate:        func(e *events.WatchEvent) { e.VideoDuration = 0 },
			expectedField: "video_duration",
		},
		{
			name:          "negative video duration",
			mutate:        func(e *events.WatchEvent) { e.VideoDuration = -10 },
			expectedField: "video_duration",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			tc.mutate(&event)

			err := event.Validate()
			if tc.expectedField == "" {
				assert.NoError(t, err)
				return
			}

			var schemaErr *events.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tc.expectedField, schemaErr.Field)
		})
	}
}

func TestCompletionRatio(t *testing.T) {
	tests := []struct {
		name     string
		watched  float64
		duration float64
		expected float64
	}{
		{name: "partial watch", watched: 30, duration: 60, expected: 0.5},
		{name: "full watch", watched: 60, duration: 60, expected: 1.0},
		{name: "replay clamps to one", watched: 150, duration: 60, expected: 1.0},
		{name: "zero watch", watched: 0, duration: 60, expected: 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			event.WatchedSeconds = tc.watched
			event.VideoDuration = tc.duration
			assert.InDelta(t, tc.expected, event.CompletionRatio(), 1e-9)
		})
	}
}

func TestParseEventTime(t *testing.T) {
	expected := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "RFC3339 with Z", input: "2024-03-01T10:30:00Z", want: expected},
		{name: "RFC3339 with offset", input: "2024-03-01T12:30:00+02:00", want: expected},
		{name: "no zone designator treated as UTC", input: "2024-03-01T10:30:00", want: expected},
		{name: "space separated", input: "2024-03-01 10:30:00", want: expected},
		{name: "surrounding whitespace", input: "  2024-03-01T10:30:00Z  ", want: expected},
		{name: "date only rejected", input: "2024-03-01", wantErr: true},
		{name: "garbage rejected", input: "not-a-time", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := events.ParseEventTime(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
