package main

import (
	"database/sql"
	"log"
	"time"

	"partnerhub/internal/pkg/logger"
	"partnerhub/internal/platform/config"
	"partnerhub/internal/platform/database"
	"partnerhub/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Starting background workers...")

	go runInvitationExpiryWorker(db)
	go runQueuedEmailSweeper(db)

	// Keep process alive
	select {}
}

func runInvitationExpiryWorker(db *sql.DB) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := workers.ExpireInvitations(db); err != nil {
			log.Printf("Error expiring invitations: %v", err)
		}
	}
}

func runQueuedEmailSweeper(db *sql.DB) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if err := workers.SweepQueuedEmails(db); err != nil {
			log.Printf("Error sweeping queued emails: %v", err)
		}
	}
}
