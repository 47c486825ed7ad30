package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"streampulse/internal/events"
)

type watchEventRow struct {
	UserID         string    `parquet:"user_id"`
	VideoID        string    `parquet:"video_id"`
	CreatorID      string    `parquet:"creator_id"`
	EventTime      time.Time `parquet:"event_time"`
	WatchedSeconds float64   `parquet:"watched_seconds"`
	VideoDuration  float64   `parquet:"video_duration"`
}

// WriteWatchEventsParquet exports raw watch events to watch_events.parquet,
// readable by the loader and by pandas/duckdb alike.
func (e *Exporter) WriteWatchEventsParquet(evts []events.WatchEvent) (string, error) {
	path := e.dir + string(os.PathSeparator) + "watch_events.parquet"

	rows := make([]watchEventRow, len(evts))
	for i, event := range evts {
		rows[i] = watchEventRow{
			UserID:         event.UserID,
			VideoID:        event.VideoID,
			CreatorID:      event.CreatorID,
			EventTime:      event.EventTime.UTC(),
			WatchedSeconds: event.WatchedSeconds,
			VideoDuration:  event.VideoDuration,
		}
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return "", fmt.Errorf("failed to write parquet file %s: %w", path, err)
	}

	e.logger.Info("Exported parquet", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, nil
}
