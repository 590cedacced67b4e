package database

import (
	"fmt"
	"log"

	"referral-bot/internal/config"
	"referral-bot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes the database connection. The ledger runs on embedded
// sqlite by default; postgres is available for larger deployments.
func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connection established (%s)", cfg.Database.Driver)
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	coreModels := []interface{}{
		&models.User{},
		&models.Referral{},
		&models.UserFlag{},
		&models.Setting{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
