package cmd

import (
	"fmt"

	"github.com/jonnen/jonnen/db"
	"github.com/jonnen/jonnen/internal/config"
)

// runMigrate applies pending database migrations without starting the server.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
