package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// invalidTextRepresentationCode is raised when a value cannot be cast to the column type
	invalidTextRepresentationCode = "22P02"

	// invalidDatetimeFormatCode and datetimeOverflowCode are raised for unusable timestamps
	invalidDatetimeFormatCode = "22007"
	datetimeOverflowCode      = "22008"

	// invalidRegexCode is raised for a malformed $regex pattern
	invalidRegexCode = "2201B"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better debugging information.
// Schema and cast failures become store.ErrInvalidEntity so the API can report
// them as client errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case checkViolationCode:
			field := constraintField(pgErr.TableName, pgErr.ConstraintName)
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity,
				domain.NewBadRequest(field, "invalid value"))
		case notNullViolationCode:
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity,
				domain.NewBadRequest(columnField(pgErr.ColumnName), "is required"))
		case invalidTextRepresentationCode, invalidDatetimeFormatCode, datetimeOverflowCode, invalidRegexCode:
			return fmt.Errorf("%w: invalid value: %v", store.ErrInvalidEntity, err)
		}
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns notFound.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// columnField maps a column name back to its document field name.
func columnField(name string) string {
	for _, s := range []schema{userSchema, taskSchema} {
		for field, col := range s {
			if col.name == name {
				return field
			}
		}
	}
	return name
}

// constraintField extracts the column from a default constraint name such as
// "tasks_name_check".
func constraintField(table, constraint string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_check")
	return columnField(name)
}
