package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mduc-2610/doc-agent-mlt/internal/config"
	"github.com/mduc-2610/doc-agent-mlt/internal/database"
	"github.com/mduc-2610/doc-agent-mlt/internal/handler"
	"github.com/mduc-2610/doc-agent-mlt/internal/logger"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logr.Sync()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		logr.Fatal("failed to run migrations", "error", err)
	}

	// Setup router
	r, err := handler.SetupRouter(cfg, db, logr)
	if err != nil {
		logr.Fatal("failed to set up router", "error", err)
	}

	// Start server
	addr := cfg.Host + ":" + cfg.Port
	logr.Info("document agent starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		logr.Fatal("server exited", "error", err)
	}
}
