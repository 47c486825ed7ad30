package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"streampulse/internal/analytics"
	"streampulse/internal/churn"
	"streampulse/internal/config"
	"streampulse/internal/database"
	"streampulse/internal/events"
	"streampulse/internal/store"
)

const (
	msgEventAdded     = "Event added successfully"
	errInvalidRequest = "Invalid request"
)

// Handler serves the dashboard API endpoints.
type Handler struct {
	cfg       *config.Config
	dbManager *database.DBManager
	logger    *slog.Logger
}

// NewHandler creates a handler.
func NewHandler(cfg *config.Config, dbManager *database.DBManager, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, dbManager: dbManager, logger: logger}
}

// Health reports service liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// CreateEventParams is the ingest payload for a single watch event.
type CreateEventParams struct {
	UserID         string  `json:"user_id"`
	VideoID        string  `json:"video_id"`
	CreatorID      string  `json:"creator_id"`
	EventTime      string  `json:"event_time"`
	WatchedSeconds float64 `json:"watched_seconds"`
	VideoDuration  float64 `json:"video_duration"`
}

// CreateEvent ingests one watch event. Schema violations are rejected here so
// the analytics core never sees an invalid record.
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var params CreateEventParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	eventTime, err := events.ParseEventTime(params.EventTime)
	if err != nil {
		h.logger.Debug("Rejected event with bad timestamp", slog.Any("error", err))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event := events.WatchEvent{
		UserID:         params.UserID,
		VideoID:        params.VideoID,
		CreatorID:      params.CreatorID,
		EventTime:      eventTime,
		WatchedSeconds: params.WatchedSeconds,
		VideoDuration:  params.VideoDuration,
	}
	if err := event.Validate(); err != nil {
		h.logger.Debug("Rejected invalid event", slog.Any("error", err))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := store.InsertEvents(h.dbManager.GetConnection(), []events.WatchEvent{event}); err != nil {
		h.logger.Error("Failed to store event", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store event"})
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgEventAdded,
		"status":  http.StatusAccepted,
	})
}

// Overview returns the headline engagement KPIs.
func (h *Handler) Overview(c *fiber.Ctx) error {
	db := h.dbManager.GetConnection()

	evts, err := store.FetchAllEvents(db)
	if err != nil {
		h.logger.Error("Failed to fetch events", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}
	summaries, err := store.FetchSummaries(db)
	if err != nil {
		h.logger.Error("Failed to fetch summaries", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch summaries"})
	}

	return c.JSON(fiber.Map{
		"completion_rate":         analytics.CompletionRate(evts),
		"drop_off":                analytics.DropOffPositions(evts, h.cfg.DropOffThresholds),
		"average_session_minutes": analytics.AverageSessionDuration(summaries),
		"dau_wau":                 analytics.DAUWAURatio(evts),
		"total_events":            len(evts),
		"total_sessions":          len(summaries),
	})
}

// Retention returns the first-seen cohort retention curve.
func (h *Handler) Retention(c *fiber.Ctx) error {
	evts, err := store.FetchAllEvents(h.dbManager.GetConnection())
	if err != nil {
		h.logger.Error("Failed to fetch events", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	return c.JSON(fiber.Map{
		"points": analytics.RetentionCurve(evts, h.cfg.RetentionCurveOffsets),
	})
}

// Creators returns creator watch-share attribution, optionally limited via
// the top query parameter.
func (h *Handler) Creators(c *fiber.Ctx) error {
	evts, err := store.FetchAllEvents(h.dbManager.GetConnection())
	if err != nil {
		h.logger.Error("Failed to fetch events", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	shares := analytics.CreatorWatchShares(evts)
	if raw := c.Query("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top < 0 {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "top must be a non-negative integer"})
		}
		shares = analytics.TopCreators(evts, top)
	}

	return c.JSON(fiber.Map{"creators": shares})
}

// Activity returns the daily active user series.
func (h *Handler) Activity(c *fiber.Ctx) error {
	evts, err := store.FetchAllEvents(h.dbManager.GetConnection())
	if err != nil {
		h.logger.Error("Failed to fetch events", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	counts := analytics.DailyActiveUsers(evts)
	series := make([]fiber.Map, len(counts))
	for i, count := range counts {
		series[i] = fiber.Map{"date": count.Date.String(), "active_users": count.ActiveUsers}
	}
	return c.JSON(fiber.Map{"days": series})
}

// Churn trains the retention classifier on the stored events and returns
// per-user retention probabilities. When there is not enough data to train,
// the panel degrades to unavailable instead of failing.
func (h *Handler) Churn(c *fiber.Ctx) error {
	evts, err := store.FetchAllEvents(h.dbManager.GetConnection())
	if err != nil {
		h.logger.Error("Failed to fetch events", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}

	features, err := churn.BuildFeatures(evts, h.cfg.SessionGap())
	if err != nil {
		h.logger.Error("Failed to build churn features", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build features"})
	}
	labels := churn.LabelRetention(evts, h.cfg.RetentionHorizonDays)
	dataset := churn.PrepareDataset(features, labels)

	model, err := churn.Train(dataset, churn.TrainParams{
		LearningRate: h.cfg.ChurnLearningRate,
		Epochs:       h.cfg.ChurnEpochs,
	})
	if err != nil {
		if errors.Is(err, churn.ErrEmptyDataset) {
			h.logger.Info("Churn model unavailable: no training data")
			return c.JSON(fiber.Map{"available": false})
		}
		h.logger.Error("Failed to train churn model", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to train model"})
	}

	return c.JSON(fiber.Map{
		"available": true,
		"horizon":   h.cfg.RetentionHorizonDays,
		"scores":    model.Predict(dataset),
	})
}
