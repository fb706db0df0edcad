// Package main is the entry point for the EcoDrive service HTTP server.
package main

import (
	"log"

	"github.com/smartride/ecodrive-service/internal/advisor"
	"github.com/smartride/ecodrive-service/internal/classifier"
	"github.com/smartride/ecodrive-service/internal/config"
	"github.com/smartride/ecodrive-service/internal/database"
	"github.com/smartride/ecodrive-service/internal/notify"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/server"
	"github.com/smartride/ecodrive-service/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	log.Println("Successfully connected to database")

	// Create repositories
	sessionRepo := repository.NewPostgresSessionRepository(db)

	// Initialize alert delivery if configured
	var notifier advisor.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notify.WebhookURL)
		log.Println("Alert delivery initialized with webhook notifier")
	} else {
		log.Println("Alert webhook not configured - alerts will only be logged")
	}

	// Each session loads its own classifier model and releases it at
	// session end.
	modelFactory := func() (classifier.Model, error) {
		if cfg.Pipeline.ModelPath != "" {
			return classifier.LoadLogisticModel(cfg.Pipeline.ModelPath)
		}
		return classifier.DefaultLogisticModel(), nil
	}

	manager := session.NewManager(
		session.Config{
			MotionCap:              cfg.Pipeline.MotionCap,
			StreakThreshold:        cfg.Pipeline.StreakThreshold,
			MaxAccuracyM:           cfg.Pipeline.MaxAccuracyM,
			MinFixInterval:         cfg.Pipeline.MinFixInterval,
			StationaryThresholdKmh: cfg.Pipeline.StationaryThresholdKmh,
		},
		sessionRepo,
		notifier,
		modelFactory,
	)

	// Create server dependencies
	deps := &server.Dependencies{
		Config:      cfg,
		SessionRepo: sessionRepo,
		Manager:     manager,
	}

	// Create and start the server
	srv := server.New(deps)

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		log.Printf("Failed to start server: %v", err)
		panic(err) // Use panic instead of log.Fatalf to ensure defer runs
	}
}
