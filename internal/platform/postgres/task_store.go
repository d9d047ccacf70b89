package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// taskColumns is the column list every task query scans with scanTask.
const taskColumns = "id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		deadline time.Time
	)
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&deadline,
		&task.Completed,
		&task.AssignedUser,
		&task.AssignedUserName,
		&task.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	deadline = deadline.UTC()
	task.Deadline = &deadline
	return &task, nil
}

// Find implements store.TaskStore.Find
func (s *PostgresTaskStore) Find(ctx context.Context, opts *query.Options) ([]store.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q, args, err := buildSelect(taskSchema, "tasks", taskColumns, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := make([]store.Record, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		rec, err := store.ToRecord(task, opts.Projection)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("tasks listed", slog.Int("count", len(records)))
	return records, nil
}

// Count implements store.TaskStore.Count
func (s *PostgresTaskStore) Count(ctx context.Context, filter query.Document) (int64, error) {
	q, args, err := buildCount(taskSchema, "tasks", filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tasks",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return n, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return nil, MapError(err)
	}
	return task, nil
}

// CountExisting implements store.TaskStore.CountExisting
func (s *PostgresTaskStore) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM tasks WHERE id = ANY($1::text[])", ids).Scan(&n)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count existing tasks",
			slog.String("error", err.Error()),
			slog.Int("ids", len(ids)))
		return 0, MapError(err)
	}
	return n, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, deadline, completed,
			assigned_user, assigned_user_name, date_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		task.ID,
		task.Name,
		task.Description,
		task.Deadline,
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
		task.DateCreated,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("assigned_user", task.AssignedUser))
	return nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $2, description = $3, deadline = $4, completed = $5,
			assigned_user = $6, assigned_user_name = $7
		WHERE id = $1
	`,
		task.ID,
		task.Name,
		task.Description,
		task.Deadline,
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task updated",
		slog.String("task_id", task.ID),
		slog.String("assigned_user", task.AssignedUser),
		slog.Bool("completed", task.Completed))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id))
	return nil
}

// ClearAssignee implements store.TaskStore.ClearAssignee
func (s *PostgresTaskStore) ClearAssignee(ctx context.Context, userID string, taskIDs []string) (int64, error) {
	if userID == "" || (taskIDs != nil && len(taskIDs) == 0) {
		return 0, nil
	}

	q := `UPDATE tasks SET assigned_user = '', assigned_user_name = $2 WHERE assigned_user = $1`
	args := []any{userID, domain.UnassignedName}
	if taskIDs != nil {
		q += " AND id = ANY($3::text[])"
		args = append(args, taskIDs)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear task assignee",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return 0, MapError(err)
	}
	return result.RowsAffected()
}
