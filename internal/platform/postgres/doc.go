// Package postgres implements the stores defined in internal/store on top of
// PostgreSQL through database/sql and the pgx driver.
//
// Filter and sort documents from list requests are translated into SQL by
// buildSelect and buildCount. Field names in those documents are checked
// against a per-table schema, so only known columns ever reach a query and
// every value is passed as a bind parameter. Pending task sets live in a TEXT[]
// column and are changed with array_append and array_remove so that each
// pending-set write is a single idempotent statement.
//
// The schema is managed with goose; see Migrate.
package postgres
