// Package simulator generates synthetic short-form watch traffic for demos
// and load testing. Generation is deterministic for a given seed.
package simulator

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"streampulse/internal/events"
	"streampulse/internal/timeframe"
)

// Config controls the shape of the generated traffic.
type Config struct {
	Users              int
	Days               int
	EndDay             time.Time // last generated day; zero value means today
	MaxSessionsPerUser int
	CatalogSize        int // used when no catalog is supplied
	Seed               uint64
}

// DefaultConfig mirrors the bundled sample dataset: 2000 users over 30 days.
func DefaultConfig() Config {
	return Config{
		Users:              2000,
		Days:               30,
		MaxSessionsPerUser: 3,
		CatalogSize:        500,
		Seed:               42,
	}
}

// Simulator produces synthetic watch events from a video catalog.
type Simulator struct {
	cfg     Config
	catalog []events.VideoMetadata
	weights []float64
	rng     *rand.Rand
	logger  *slog.Logger
}

// New creates a simulator. When catalog is empty a synthetic one is built
// with CatalogSize videos spread across a small set of creators.
func New(catalog []events.VideoMetadata, cfg Config, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Users <= 0 {
		cfg.Users = DefaultConfig().Users
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultConfig().Days
	}
	if cfg.MaxSessionsPerUser <= 0 {
		cfg.MaxSessionsPerUser = DefaultConfig().MaxSessionsPerUser
	}
	if cfg.CatalogSize <= 0 {
		cfg.CatalogSize = DefaultConfig().CatalogSize
	}
	if cfg.EndDay.IsZero() {
		cfg.EndDay = time.Now().UTC()
	}

	s := &Simulator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		logger: logger,
	}
	if len(catalog) == 0 {
		catalog = s.syntheticCatalog()
	}
	s.catalog = catalog
	s.weights = popularityWeights(catalog)
	return s
}

// Generate produces watch events for the configured day range.
func (s *Simulator) Generate() []events.WatchEvent {
	users := make([]string, s.cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("u%d", 100000+i)
	}

	endDay := timeframe.DayOf(s.cfg.EndDay)
	startDay := endDay.AddDays(-(s.cfg.Days - 1))

	var generated []events.WatchEvent
	for d := 0; d < s.cfg.Days; d++ {
		day := startDay.AddDays(d)
		generated = append(generated, s.simulateDay(users, day)...)
	}

	s.logger.Info("Generated synthetic watch events",
		slog.Int("users", len(users)),
		slog.Int("days", s.cfg.Days),
		slog.Int("events", len(generated)))
	return generated
}

// simulateDay samples roughly 35% of the user base as active and gives each
// active user between one and MaxSessionsPerUser sessions of 1-5 videos.
func (s *Simulator) simulateDay(users []string, day timeframe.Day) []events.WatchEvent {
	dauCount := len(users) * 35 / 100
	if dauCount < 1 {
		dauCount = 1
	}
	active := s.sampleUsers(users, dauCount)

	var evts []events.WatchEvent
	for _, userID := range active {
		sessionsToday := 1 + s.rng.IntN(s.cfg.MaxSessionsPerUser)
		for range sessionsToday {
			start := day.Time().Add(
				time.Duration(s.rng.IntN(24))*time.Hour +
					time.Duration(s.rng.IntN(60))*time.Minute +
					time.Duration(s.rng.IntN(60))*time.Second)

			videosInSession := 1 + s.rng.IntN(5)
			elapsed := time.Duration(0)
			for range videosInSession {
				video := s.pickVideo()
				videoLen := s.drawVideoLength()

				// Completion propensity rises with popularity tier (0..3 -> ~0.55..0.85).
				tier := s.popularityTier(video)
				mu := 0.55 + 0.1*float64(tier)
				watchPct := clamp(s.rng.NormFloat64()*0.2+mu, 0.02, 1.0)
				watched := math.Max(1, math.Floor(watchPct*videoLen))

				evts = append(evts, events.WatchEvent{
					UserID:         userID,
					VideoID:        video.VideoID,
					CreatorID:      video.CreatorID,
					EventTime:      start.Add(elapsed),
					WatchedSeconds: watched,
					VideoDuration:  videoLen,
				})
				elapsed += time.Duration(videoLen*1.1) * time.Second
			}
		}
	}
	return evts
}

func (s *Simulator) sampleUsers(users []string, n int) []string {
	picked := make([]string, len(users))
	copy(picked, users)
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

// pickVideo samples from the catalog weighted by (views + 1).
func (s *Simulator) pickVideo() events.VideoMetadata {
	target := s.rng.Float64() * s.weights[len(s.weights)-1]
	idx := sort.SearchFloat64s(s.weights, target)
	if idx >= len(s.catalog) {
		idx = len(s.catalog) - 1
	}
	return s.catalog[idx]
}

// drawVideoLength samples a log-normal duration centered on short-form
// content (~45s median), clamped to [5, 300] seconds.
func (s *Simulator) drawVideoLength() float64 {
	length := math.Exp(s.rng.NormFloat64()*0.5 + 3.8)
	return math.Floor(clamp(length, 5, 300))
}

// popularityTier buckets a video into quartiles 0..3 by view count.
func (s *Simulator) popularityTier(video events.VideoMetadata) int {
	var below int
	for _, other := range s.catalog {
		if other.Views < video.Views {
			below++
		}
	}
	quartile := below * 4 / len(s.catalog)
	if quartile > 3 {
		quartile = 3
	}
	return quartile
}

func (s *Simulator) syntheticCatalog() []events.VideoMetadata {
	creators := make([]string, 25)
	for i := range creators {
		creators[i] = fmt.Sprintf("c%d", 1000+i)
	}

	catalog := make([]events.VideoMetadata, s.cfg.CatalogSize)
	base := timeframe.DayOf(s.cfg.EndDay).AddDays(-365)
	for i := range catalog {
		// Name-based UUIDs keep the catalog stable for a given seed.
		name := fmt.Sprintf("video-%d-%d", s.cfg.Seed, i)
		catalog[i] = events.VideoMetadata{
			VideoID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String(),
			CreatorID:   creators[s.rng.IntN(len(creators))],
			PublishTime: base.AddDays(s.rng.IntN(365)).Time(),
			Category:    "short-form",
			Views:       int64(math.Exp(s.rng.NormFloat64()*1.5 + 8)),
		}
	}
	return catalog
}

func popularityWeights(catalog []events.VideoMetadata) []float64 {
	weights := make([]float64, len(catalog))
	var cumulative float64
	for i, video := range catalog {
		cumulative += float64(video.Views) + 1.0
		weights[i] = cumulative
	}
	return weights
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
