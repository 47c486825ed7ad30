// Package export serializes computed analytics to tabular files for external
// consumers (spreadsheets, notebooks, BI tools).
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"streampulse/internal/analytics"
	"streampulse/internal/churn"
	"streampulse/internal/events"
	"streampulse/internal/sessions"
)

// Exporter writes analytics artifacts to an explicit output directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// New creates an exporter rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &Exporter{dir: dir, logger: logger}, nil
}

func (e *Exporter) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path := e.dir + string(os.PathSeparator) + name
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", path, err)
	}

	e.logger.Info("Exported CSV", slog.String("path", path), slog.Int("rows", len(rows)))
	return path, nil
}

// WriteSessionSummaries exports session summaries to session_summary.csv.
func (e *Exporter) WriteSessionSummaries(summaries []sessions.SessionSummary) (string, error) {
	header := []string{
		"session_id", "user_id", "session_start", "session_end",
		"videos_watched", "creators_engaged", "session_watch_seconds",
		"mean_completion_ratio", "session_duration_minutes",
	}
	rows := make([][]string, len(summaries))
	for i, summary := range summaries {
		rows[i] = []string{
			summary.SessionID,
			summary.UserID,
			summary.SessionStart.UTC().Format(time.RFC3339),
			summary.SessionEnd.UTC().Format(time.RFC3339),
			strconv.Itoa(summary.VideosWatched),
			strconv.Itoa(summary.CreatorsEngaged),
			formatFloat(summary.SessionWatchSeconds),
			formatFloat(summary.MeanCompletionRatio),
			formatFloat(summary.SessionDurationMinutes),
		}
	}
	return e.writeCSV("session_summary.csv", header, rows)
}

// WriteRetentionCurve exports retention points to retention_curve.csv.
func (e *Exporter) WriteRetentionCurve(points []analytics.RetentionPoint) (string, error) {
	header := []string{"day", "retention_rate"}
	rows := make([][]string, len(points))
	for i, point := range points {
		rows[i] = []string{strconv.Itoa(point.Day), formatFloat(point.RetentionRate)}
	}
	return e.writeCSV("retention_curve.csv", header, rows)
}

// WriteCreatorShares exports creator attribution to creator_watch_share.csv.
func (e *Exporter) WriteCreatorShares(shares []analytics.CreatorWatchShare) (string, error) {
	header := []string{"creator_id", "watch_seconds", "watch_share"}
	rows := make([][]string, len(shares))
	for i, share := range shares {
		rows[i] = []string{share.CreatorID, formatFloat(share.WatchSeconds), formatFloat(share.WatchShare)}
	}
	return e.writeCSV("creator_watch_share.csv", header, rows)
}

// WriteWatchEventsCSV exports raw watch events to watch_events.csv in the
// same column layout the loader expects.
func (e *Exporter) WriteWatchEventsCSV(evts []events.WatchEvent) (string, error) {
	header := []string{"user_id", "video_id", "creator_id", "event_time", "watched_seconds", "video_duration"}
	rows := make([][]string, len(evts))
	for i, event := range evts {
		rows[i] = []string{
			event.UserID,
			event.VideoID,
			event.CreatorID,
			event.EventTime.UTC().Format(time.RFC3339),
			formatFloat(event.WatchedSeconds),
			formatFloat(event.VideoDuration),
		}
	}
	return e.writeCSV("watch_events.csv", header, rows)
}

// WriteChurnScores exports per-user retention probabilities to churn_scores.csv.
func (e *Exporter) WriteChurnScores(scores []churn.UserScore) (string, error) {
	header := []string{"user_id", "probability"}
	rows := make([][]string, len(scores))
	for i, score := range scores {
		rows[i] = []string{score.UserID, formatFloat(score.Probability)}
	}
	return e.writeCSV("churn_scores.csv", header, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
