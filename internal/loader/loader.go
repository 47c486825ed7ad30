// Package loader parses watch events and video catalogs from external files
// and enforces the schema at the boundary, so the core packages only ever see
// validated records. Paths are explicit constructor arguments; there is no
// process-wide data directory.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"streampulse/internal/events"
)

// Loader reads watch-event datasets from disk.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

var requiredColumns = []string{
	"user_id", "video_id", "creator_id", "event_time", "watched_seconds", "video_duration",
}

// LoadWatchEventsCSV reads and validates watch events from a CSV file with a
// header row. Every row must satisfy the WatchEvent invariants; the first
// violation aborts the load.
func (l *Loader) LoadWatchEventsCSV(path string) ([]events.WatchEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	evts, err := l.readWatchEventsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Info("Loaded watch events", slog.String("path", path), slog.Int("count", len(evts)))
	return evts, nil
}

func (l *Loader) readWatchEventsCSV(r io.Reader) ([]events.WatchEvent, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("missing required column %q", column)
		}
	}

	var evts []events.WatchEvent
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		event, err := parseEventRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		evts = append(evts, event)
	}
	return evts, nil
}

func parseEventRow(record []string, index map[string]int) (events.WatchEvent, error) {
	eventTime, err := events.ParseEventTime(record[index["event_time"]])
	if err != nil {
		return events.WatchEvent{}, err
	}

	watched, err := strconv.ParseFloat(record[index["watched_seconds"]], 64)
	if err != nil {
		return events.WatchEvent{}, fmt.Errorf("invalid watched_seconds: %w", err)
	}
	duration, err := strconv.ParseFloat(record[index["video_duration"]], 64)
	if err != nil {
		return events.WatchEvent{}, fmt.Errorf("invalid video_duration: %w", err)
	}

	event := events.WatchEvent{
		UserID:         record[index["user_id"]],
		VideoID:        record[index["video_id"]],
		CreatorID:      record[index["creator_id"]],
		EventTime:      eventTime,
		WatchedSeconds: watched,
		VideoDuration:  duration,
	}
	if err := event.Validate(); err != nil {
		return events.WatchEvent{}, err
	}
	return event, nil
}
