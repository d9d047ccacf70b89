package store

import (
	"context"
	"database/sql"
)

// DBTX is what the postgres user and task stores run their statements on.
// The server hands them the *sql.DB pool; the integration tests hand them the
// *sql.Tx opened by testdb.WithTx, which is rolled back after every test.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
