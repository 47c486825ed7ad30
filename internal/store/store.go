package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
)

const insertBatchSize = 500

// InsertEvents persists a batch of validated watch events.
func InsertEvents(db *gorm.DB, evts []events.WatchEvent) error {
	if len(evts) == 0 {
		return nil
	}
	records := make([]WatchEventRecord, len(evts))
	for i, event := range evts {
		records[i] = NewWatchEventRecord(event)
	}
	if err := db.CreateInBatches(records, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert watch events: %w", err)
	}
	return nil
}

// FetchAllEvents returns every persisted event in event-time order.
func FetchAllEvents(db *gorm.DB) ([]events.WatchEvent, error) {
	var records []WatchEventRecord
	if err := db.Order("event_time ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch watch events: %w", err)
	}
	return toEvents(records), nil
}

// FetchEventsBetween returns events with event_time in [from, to].
func FetchEventsBetween(db *gorm.DB, from, to time.Time) ([]events.WatchEvent, error) {
	var records []WatchEventRecord
	err := db.Where("event_time >= ? AND event_time <= ?", from, to).
		Order("event_time ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch events in range: %w", err)
	}
	return toEvents(records), nil
}

func toEvents(records []WatchEventRecord) []events.WatchEvent {
	evts := make([]events.WatchEvent, len(records))
	for i, record := range records {
		evts[i] = record.ToWatchEvent()
	}
	return evts
}

// CountUnprocessedEvents returns how many events still await rollup.
func CountUnprocessedEvents(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&WatchEventRecord{}).Where("processed = ?", false).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unprocessed events: %w", err)
	}
	return count, nil
}

// MarkAllEventsProcessed flags every event as rolled up.
func MarkAllEventsProcessed(db *gorm.DB) error {
	err := db.Model(&WatchEventRecord{}).Where("processed = ?", false).Update("processed", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark events processed: %w", err)
	}
	return nil
}

// UpsertSummaries writes session summaries, replacing rows that already exist
// for a session id. Session ids are deterministic, so re-running the rollup
// converges to the same rows.
func UpsertSummaries(db *gorm.DB, summaries []sessions.SessionSummary) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO session_summaries (
			session_id, user_id, session_start, session_end,
			videos_watched, creators_engaged, session_watch_seconds,
			mean_completion_ratio, session_duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			session_end = excluded.session_end,
			videos_watched = excluded.videos_watched,
			creators_engaged = excluded.creators_engaged,
			session_watch_seconds = excluded.session_watch_seconds,
			mean_completion_ratio = excluded.mean_completion_ratio,
			session_duration_minutes = excluded.session_duration_minutes,
			updated_at = excluded.updated_at
	`
	for _, summary := range summaries {
		err := db.Exec(query,
			summary.SessionID, summary.UserID, summary.SessionStart, summary.SessionEnd,
			summary.VideosWatched, summary.CreatorsEngaged, summary.SessionWatchSeconds,
			summary.MeanCompletionRatio, summary.SessionDurationMinutes, now, now).Error
		if err != nil {
			return fmt.Errorf("failed to upsert summary %s: %w", summary.SessionID, err)
		}
	}
	return nil
}

// FetchSummaries returns all persisted summaries ordered by user and start.
func FetchSummaries(db *gorm.DB) ([]sessions.SessionSummary, error) {
	var records []SessionSummaryRecord
	err := db.Order("user_id ASC, session_start ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session summaries: %w", err)
	}
	summaries := make([]sessions.SessionSummary, len(records))
	for i, record := range records {
		summaries[i] = record.ToSummary()
	}
	return summaries, nil
}
