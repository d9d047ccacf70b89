package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// userColumns is the column list every user query scans with scanUser.
const userColumns = "id, name, email, to_json(pending_tasks), date_created"

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user    domain.User
		pending []byte
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &pending, &user.DateCreated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pending, &user.PendingTasks); err != nil {
		return nil, store.NewStoreError("user", "scan", "failed to decode pending tasks", err)
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	return &user, nil
}

// Find implements store.UserStore.Find
func (s *PostgresUserStore) Find(ctx context.Context, opts *query.Options) ([]store.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q, args, err := buildSelect(userSchema, "users", userColumns, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := make([]store.Record, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, err
		}
		rec, err := store.ToRecord(user, opts.Projection)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating user rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("users listed", slog.Int("count", len(records)))
	return records, nil
}

// Count implements store.UserStore.Count
func (s *PostgresUserStore) Count(ctx context.Context, filter query.Document) (int64, error) {
	q, args, err := buildCount(userSchema, "users", filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count users",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return n, nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id))
		return nil, MapError(err)
	}
	return user, nil
}

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, pending_tasks, date_created)
		VALUES ($1, $2, $3, $4::text[], $5)
	`, user.ID, user.Name, user.Email, pendingArg(user.PendingTasks), user.DateCreated)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists during user creation", slog.String("user_id", user.ID))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		return MapError(err)
	}

	log.Info("user created", slog.String("user_id", user.ID))
	return nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, pending_tasks = $4::text[]
		WHERE id = $1
	`, user.ID, user.Name, user.Email, pendingArg(user.PendingTasks))
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already exists during user update", slog.String("user_id", user.ID))
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user updated", slog.String("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id))
	return nil
}

// AddPendingTask implements store.UserStore.AddPendingTask
func (s *PostgresUserStore) AddPendingTask(ctx context.Context, userID, taskID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET pending_tasks = array_append(pending_tasks, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(pending_tasks))
	`, userID, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add pending task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("task_id", taskID))
		return MapError(err)
	}
	return nil
}

// RemovePendingTask implements store.UserStore.RemovePendingTask
func (s *PostgresUserStore) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET pending_tasks = array_remove(pending_tasks, $2::text)
		WHERE id = $1 AND $2::text = ANY(pending_tasks)
	`, userID, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove pending task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
			slog.String("task_id", taskID))
		return MapError(err)
	}
	return nil
}

// pendingArg never passes a nil slice, which the driver would encode as NULL.
func pendingArg(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
