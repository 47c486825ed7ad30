package loader

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/parquet-go/parquet-go"

	"streampulse/internal/events"
)

// watchEventRow mirrors the parquet schema of exported watch-event files.
type watchEventRow struct {
	UserID         string    `parquet:"user_id"`
	VideoID        string    `parquet:"video_id"`
	CreatorID      string    `parquet:"creator_id"`
	EventTime      time.Time `parquet:"event_time"`
	WatchedSeconds float64   `parquet:"watched_seconds"`
	VideoDuration  float64   `parquet:"video_duration"`
}

// LoadWatchEventsParquet reads and validates watch events from a parquet file.
func (l *Loader) LoadWatchEventsParquet(path string) ([]events.WatchEvent, error) {
	rows, err := parquet.ReadFile[watchEventRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}

	evts := make([]events.WatchEvent, 0, len(rows))
	for i, row := range rows {
		event := events.WatchEvent{
			UserID:         row.UserID,
			VideoID:        row.VideoID,
			CreatorID:      row.CreatorID,
			EventTime:      row.EventTime.UTC(),
			WatchedSeconds: row.WatchedSeconds,
			VideoDuration:  row.VideoDuration,
		}
		if err := event.Validate(); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		evts = append(evts, event)
	}

	l.logger.Info("Loaded watch events", slog.String("path", path), slog.Int("count", len(evts)))
	return evts, nil
}
