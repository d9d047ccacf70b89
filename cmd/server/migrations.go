package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

var migrationCommands = map[string]bool{
	"up":        true,
	"up-by-one": true,
	"down":      true,
	"redo":      true,
	"reset":     true,
	"status":    true,
	"version":   true,
}

// handleMigrations runs a single goose command against the embedded migrations.
func handleMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}

	logger.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db, logger, command, args...); err != nil {
		return err
	}
	logger.Info("Migration command completed", "command", command)
	return nil
}
