package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tmoreau/go-billing/internal/config"
	"github.com/tmoreau/go-billing/internal/models"
)

// Connect opens the database selected by the config. Postgres connections
// are retried a few times to give the server time to come up in container
// deployments.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var conn *gorm.DB
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("database connection failed: %w", err)
}

// Migrate applies the schema for all entities.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Product{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
	)
}
