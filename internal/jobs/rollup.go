// Package jobs runs the background rollup that keeps persisted session
// summaries in sync with ingested watch events.
package jobs

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"streampulse/internal/config"
	"streampulse/internal/database"
	"streampulse/internal/sessions"
	"streampulse/internal/store"
)

// RollupJob recomputes session summaries whenever unprocessed events exist.
// Sessionization is global per user, so the job reloads the full event set
// rather than processing increments; session ids are deterministic, making
// the upsert idempotent.
type RollupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

// NewRollupJob creates a rollup job.
func NewRollupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *RollupJob {
	return &RollupJob{dbManager: dbManager, logger: logger, cfg: cfg}
}

// Run executes one rollup pass.
func (j *RollupJob) Run() error {
	db := j.dbManager.GetConnection()

	pending, err := store.CountUnprocessedEvents(db)
	if err != nil {
		return err
	}
	if pending == 0 {
		j.logger.Debug("No unprocessed events found")
		return nil
	}

	j.logger.Info("Rolling up sessions", slog.Int64("pending_events", pending))

	evts, err := store.FetchAllEvents(db)
	if err != nil {
		return err
	}

	sessionized, err := sessions.Sessionize(evts, j.cfg.SessionGap())
	if err != nil {
		return fmt.Errorf("rollup failed: %w", err)
	}
	summaries := sessions.Aggregate(sessionized)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := store.UpsertSummaries(tx, summaries); err != nil {
			return err
		}
		return store.MarkAllEventsProcessed(tx)
	})
	if err != nil {
		return fmt.Errorf("failed to persist rollup: %w", err)
	}

	j.logger.Info("Rollup completed",
		slog.Int("events", len(evts)),
		slog.Int("sessions", len(summaries)))
	return nil
}
