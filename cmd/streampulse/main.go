// main.go - HTTP server application
package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"streampulse/internal/config"
	"streampulse/internal/database"
	"streampulse/internal/http"
	"streampulse/internal/jobs"
	"streampulse/internal/logging"
)

func main() {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	log.Println("Running database migrations...")
	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed")

	scheduler := jobs.NewScheduler(dbManager, logger, cfg)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	server := http.NewServer(cfg, dbManager, logger)
	go func() {
		logger.Info("Starting server", slog.String("port", cfg.AppPort))
		if err := server.Listen(); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	waitForShutdownSignal(server, scheduler, dbManager, logger)
}

// waitForShutdownSignal sets up signal handling and performs graceful shutdown
func waitForShutdownSignal(server *http.Server, scheduler *jobs.Scheduler, dbManager *database.DBManager, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigChan
	logger.Info("Received signal, shutting down", slog.String("signal", sig.String()))

	scheduler.Stop()
	if err := server.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", slog.Any("error", err))
	}
	if err := dbManager.Close(); err != nil {
		logger.Error("Error closing database", slog.Any("error", err))
	}
	logger.Info("Shutdown complete")
}
