package main

import (
	"log"

	"referral-bot/internal/config"
	"referral-bot/internal/database"
)

// Standalone migration runner, for deployments that migrate outside the
// server process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("✅ Migrations applied successfully")
}
