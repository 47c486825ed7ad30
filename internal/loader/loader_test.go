package loader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streampulse/internal/loader"
	"streampulse/internal/testsupport"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWatchEventsCSV(t *testing.T) {
	csv := `user_id,video_id,creator_id,event_time,watched_seconds,video_duration
u1,v1,c1,2024-03-01T10:00:00Z,30,60
u2,v2,c2,2024-03-01 11:15:00,45.5,90
`
	path := writeTempFile(t, "events.csv", csv)

	evts, err := loader.New(testsupport.GetLogger()).LoadWatchEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, evts, 2)

	assert.Equal(t, "u1", evts[0].UserID)
	assert.Equal(t, "v1", evts[0].VideoID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), evts[0].EventTime)
	assert.Equal(t, 30.0, evts[0].WatchedSeconds)

	// Space-separated timestamps are coerced to UTC too.
	assert.Equal(t, time.Date(2024, 3, 1, 11, 15, 0, 0, time.UTC), evts[1].EventTime)
	assert.Equal(t, 45.5, evts[1].WatchedSeconds)
}

func TestLoadWatchEventsCSVColumnOrderIndependent(t *testing.T) {
	csv := `video_duration,user_id,event_time,creator_id,video_id,watched_seconds
60,u1,2024-03-01T10:00:00Z,c1,v1,30
`
	path := writeTempFile(t, "events.csv", csv)

	evts, err := loader.New(testsupport.GetLogger()).LoadWatchEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, 60.0, evts[0].VideoDuration)
}

func TestLoadWatchEventsCSVErrors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectedErr string
	}{
		{
			name:        "missing column",
			content:     "user_id,video_id,creator_id,event_time,watched_seconds\nu1,v1,c1,2024-03-01T10:00:00Z,30\n",
			expectedErr: `missing required column "video_duration"`,
		},
		{
			name: "bad timestamp reports row number",
			content: "user_id,video_id,creator_id,event_time,watched_seconds,video_duration\n" +
				"u1,v1,c1,yesterday,30,60\n",
			expectedErr: "row 2",
		},
		{
			name: "schema violation aborts the load",
			content: "user_id,video_id,creator_id,event_time,watched_seconds,video_duration\n" +
				"u1,v1,c1,2024-03-01T10:00:00Z,-5,60\n",
			expectedErr: "watched_seconds",
		},
		{
			name: "non numeric duration",
			content: "user_id,video_id,creator_id,event_time,watched_seconds,video_duration\n" +
				"u1,v1,c1,2024-03-01T10:00:00Z,30,sixty\n",
			expectedErr: "invalid video_duration",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "events.csv", tc.content)
			_, err := loader.New(testsupport.GetLogger()).LoadWatchEventsCSV(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestLoadWatchEventsCSVMissingFile(t *testing.T) {
	_, err := loader.New(testsupport.GetLogger()).LoadWatchEventsCSV("/nonexistent/events.csv")
	require.Error(t, err)
}

func TestLoadVideoCatalog(t *testing.T) {
	yaml := `videos:
  - video_id: v1
    creator_id: c1
    publish_time: 2024-01-15T00:00:00Z
    category: comedy
    views: 1200
  - video_id: v2
    creator_id: c2
    publish_time: 2024-02-01T08:30:00Z
    category: music
    views: 0
`
	path := writeTempFile(t, "catalog.yaml", yaml)

	catalog, err := loader.New(testsupport.GetLogger()).LoadVideoCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	assert.Equal(t, "v1", catalog[0].VideoID)
	assert.Equal(t, "c1", catalog[0].CreatorID)
	assert.Equal(t, "comedy", catalog[0].Category)
	assert.Equal(t, int64(1200), catalog[0].Views)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), catalog[0].PublishTime)
}

func TestLoadVideoCatalogErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing video id",
			content: "videos:\n  - creator_id: c1\n    publish_time: 2024-01-15T00:00:00Z\n",
		},
		{
			name:    "negative views",
			content: "videos:\n  - video_id: v1\n    creator_id: c1\n    publish_time: 2024-01-15T00:00:00Z\n    views: -5\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "catalog.yaml", tc.content)
			_, err := loader.New(testsupport.GetLogger()).LoadVideoCatalog(path)
			require.Error(t, err)
		})
	}
}
