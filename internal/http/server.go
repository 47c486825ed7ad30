// Package http exposes the dashboard API over fiber.
package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"streampulse/internal/config"
	"streampulse/internal/database"
)

// Server hosts the dashboard API.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	dbManager *database.DBManager
	logger    *slog.Logger
}

// NewServer builds the fiber application with all routes mounted.
func NewServer(cfg *config.Config, dbManager *database.DBManager, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	s := &Server{app: app, cfg: cfg, dbManager: dbManager, logger: logger}
	s.mountRoutes()
	return s
}

func (s *Server) mountRoutes() {
	handler := NewHandler(s.cfg, s.dbManager, s.logger)

	s.app.Get("/health", handler.Health)

	api := s.app.Group("/api/v1")
	api.Post("/events", handler.CreateEvent)
	api.Get("/overview", handler.Overview)
	api.Get("/retention", handler.Retention)
	api.Get("/creators", handler.Creators)
	api.Get("/activity", handler.Activity)
	api.Get("/churn", handler.Churn)
}

// Listen starts serving on the configured port. Blocks until shutdown.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.AppPort)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
