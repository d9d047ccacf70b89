//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// TxTimeout bounds a single WithTx body.
const TxTimeout = 10 * time.Second

// ErrNoDatabaseURL is returned by Open when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

// DatabaseURL returns the test connection string, preferring DATABASE_URL.
func DatabaseURL() string {
	for _, key := range []string{"DATABASE_URL", "TASKBOARD_DATABASE_URL"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies all migrations.
func Open(ctx context.Context) (*sql.DB, error) {
	dbURL := DatabaseURL()
	if dbURL == "" {
		return nil, ErrNoDatabaseURL
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}
	db.SetMaxOpenConns(5)

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(migrateCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %s", redact.String(dbURL), redact.Error(err))
	}
	if err := postgres.Migrate(migrateCtx, db, nil, "up"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return db, nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TxTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %s", redact.Error(err))
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(ctx, tx)
}
