// Package testsupport provides shared helpers for package tests: in-memory
// databases, event builders and a ready-to-use API server.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"streampulse/internal/config"
	"streampulse/internal/database"
	"streampulse/internal/events"
	apphttp "streampulse/internal/http"
	"streampulse/internal/store"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// allModels returns all persisted models for migration
func allModels() []any {
	return []any{
		&store.WatchEventRecord{},
		&store.SessionSummaryRecord{},
	}
}

// SetupTestDB creates a test database with all models migrated. Uses a named
// in-memory database with cache=shared so multiple connections within a test
// see the same data. The database is cached by root test name so subtests
// share it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching so setup closures that capture the
	// outer t keep working inside t.Run subtests
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a database manager backed by a test database.
func SetupTestDBManager(t *testing.T) (*database.DBManager, *config.Config, *slog.Logger) {
	t.Helper()

	cfg := GetTestConfig()
	db := SetupTestDB(t)
	logger := GetLogger()

	return database.NewDBManagerWithConnection(cfg, logger, db), cfg, logger
}

// GetTestConfig returns the application configuration forced into the test
// environment.
func GetTestConfig() *config.Config {
	cfg := config.GetConfig()
	cfg.Environment = config.Test
	return cfg
}

// GetLogger returns a test logger that only surfaces errors
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tableNames {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// Day returns midnight UTC of 2024-03-01 plus the given day offset. Tests
// build their timelines relative to this anchor.
func Day(offset int) time.Time {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

// WatchEventAt builds a valid watch event at the given time.
func WatchEventAt(userID string, at time.Time, watched, duration float64) events.WatchEvent {
	return events.WatchEvent{
		UserID:         userID,
		VideoID:        "v1",
		CreatorID:      "c1",
		EventTime:      at,
		WatchedSeconds: watched,
		VideoDuration:  duration,
	}
}

// CreatorEventAt builds a valid watch event attributed to a specific creator.
func CreatorEventAt(userID, creatorID string, at time.Time, watched, duration float64) events.WatchEvent {
	event := WatchEventAt(userID, at, watched, duration)
	event.CreatorID = creatorID
	event.VideoID = "v-" + creatorID
	return event
}

// InsertTestEvents stores events directly, failing the test on error.
func InsertTestEvents(t *testing.T, db *gorm.DB, evts []events.WatchEvent) {
	t.Helper()
	if err := store.InsertEvents(db, evts); err != nil {
		t.Fatalf("testsupport: failed to insert events: %v", err)
	}
}

// CreateTestApp builds the API server on top of a test database and returns
// the fiber application for app.Test driven requests.
func CreateTestApp(t *testing.T) (*fiber.App, *database.DBManager) {
	t.Helper()

	dbManager, cfg, logger := SetupTestDBManager(t)
	server := apphttp.NewServer(cfg, dbManager, logger)
	return server.App(), dbManager
}
