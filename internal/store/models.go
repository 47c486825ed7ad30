// Package store persists watch events and rolled-up session summaries.
package store

import (
	"time"

	"streampulse/internal/events"
	"streampulse/internal/sessions"
)

// WatchEventRecord is a persisted watch event awaiting (or past) rollup.
type WatchEventRecord struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	UserID         string    `gorm:"index:idx_user_event_time;not null"`
	VideoID        string    `gorm:"not null"`
	CreatorID      string    `gorm:"index;not null"`
	EventTime      time.Time `gorm:"index:idx_user_event_time;not null"`
	WatchedSeconds float64   `gorm:"not null"`
	VideoDuration  float64   `gorm:"not null"`
	Processed      bool      `gorm:"not null;default:false;index"`
	CreatedAt      time.Time
}

// TableName sets the sqlite table name.
func (WatchEventRecord) TableName() string {
	return "watch_events"
}

// ToWatchEvent converts the record to the canonical event type.
func (r WatchEventRecord) ToWatchEvent() events.WatchEvent {
	return events.WatchEvent{
		UserID:         r.UserID,
		VideoID:        r.VideoID,
		CreatorID:      r.CreatorID,
		EventTime:      r.EventTime,
		WatchedSeconds: r.WatchedSeconds,
		VideoDuration:  r.VideoDuration,
	}
}

// NewWatchEventRecord builds a record from a canonical event.
func NewWatchEventRecord(event events.WatchEvent) WatchEventRecord {
	return WatchEventRecord{
		UserID:         event.UserID,
		VideoID:        event.VideoID,
		CreatorID:      event.CreatorID,
		EventTime:      event.EventTime,
		WatchedSeconds: event.WatchedSeconds,
		VideoDuration:  event.VideoDuration,
	}
}

// SessionSummaryRecord is a persisted session summary, one row per session.
type SessionSummaryRecord struct {
	ID                     uint      `gorm:"primaryKey;autoIncrement"`
	SessionID              string    `gorm:"uniqueIndex;not null"`
	UserID                 string    `gorm:"index;not null"`
	SessionStart           time.Time `gorm:"index;not null"`
	SessionEnd             time.Time `gorm:"not null"`
	VideosWatched          int       `gorm:"not null;default:0"`
	CreatorsEngaged        int       `gorm:"not null;default:0"`
	SessionWatchSeconds    float64   `gorm:"not null;default:0"`
	MeanCompletionRatio    float64   `gorm:"not null;default:0"`
	SessionDurationMinutes float64   `gorm:"not null;default:0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName sets the sqlite table name.
func (SessionSummaryRecord) TableName() string {
	return "session_summaries"
}

// ToSummary converts the record to the core summary type.
func (r SessionSummaryRecord) ToSummary() sessions.SessionSummary {
	return sessions.SessionSummary{
		SessionID:              r.SessionID,
		UserID:                 r.UserID,
		SessionStart:           r.SessionStart,
		SessionEnd:             r.SessionEnd,
		VideosWatched:          r.VideosWatched,
		CreatorsEngaged:        r.CreatorsEngaged,
		SessionWatchSeconds:    r.SessionWatchSeconds,
		MeanCompletionRatio:    r.MeanCompletionRatio,
		SessionDurationMinutes: r.SessionDurationMinutes,
	}
}
