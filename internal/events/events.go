// Package events defines the canonical watch-event records consumed by the
// analytics pipeline. Records are constructed once at the ingestion boundary
// and never mutated afterwards.
package events

import (
	"fmt"
	"strings"
	"time"
)

// WatchEvent is one playback record. watched_seconds may exceed video_duration
// when the viewer replays parts of the video; downstream completion ratios are
// clamped to [0,1].
type WatchEvent struct {
	UserID         string    `json:"user_id"`
	VideoID        string    `json:"video_id"`
	CreatorID      string    `json:"creator_id"`
	EventTime      time.Time `json:"event_time"`
	WatchedSeconds float64   `json:"watched_seconds"`
	VideoDuration  float64   `json:"video_duration"`
}

// VideoMetadata describes a static video descriptor from the catalog.
type VideoMetadata struct {
	VideoID     string    `json:"video_id" yaml:"video_id"`
	CreatorID   string    `json:"creator_id" yaml:"creator_id"`
	PublishTime time.Time `json:"publish_time" yaml:"publish_time"`
	Category    string    `json:"category" yaml:"category"`
	Views       int64     `json:"views" yaml:"views"`
}

// SchemaError reports a record that violates the watch-event schema. It is
// raised at the ingestion boundary; the core packages assume validated input.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("watch event schema violation: %s %s", e.Field, e.Reason)
}

// Validate checks the watch-event invariants. It returns a *SchemaError
// naming the first offending field.
func (e WatchEvent) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return &SchemaError{Field: "user_id", Reason: "is required"}
	}
	if strings.TrimSpace(e.VideoID) == "" {
		return &SchemaError{Field: "video_id", Reason: "is required"}
	}
	if strings.TrimSpace(e.CreatorID) == "" {
		return &SchemaError{Field: "creator_id", Reason: "is required"}
	}
	if e.EventTime.IsZero() {
		return &SchemaError{Field: "event_time", Reason: "is required"}
	}
	if e.WatchedSeconds < 0 {
		return &SchemaError{Field: "watched_seconds", Reason: "cannot be negative"}
	}
	if e.VideoDuration <= 0 {
		return &SchemaError{Field: "video_duration", Reason: "must be positive"}
	}
	return nil
}

// CompletionRatio returns watched seconds over video duration clamped to
// [0,1]. The event must satisfy Validate; in particular VideoDuration > 0.
func (e WatchEvent) CompletionRatio() float64 {
	ratio := e.WatchedSeconds / e.VideoDuration
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

// Accepted event-time layouts, tried in order. ISO-8601 with Z or a numeric
// offset, then without any zone designator (interpreted as UTC).
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventTime coerces an ISO-8601 timestamp string into a UTC time.
func ParseEventTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized event_time format: %q", value)
}
