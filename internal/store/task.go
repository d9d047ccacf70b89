package store

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Find returns the tasks matching opts.Filter, ordered, paged and projected per opts.
	// Invalid filter or sort fields are reported as *domain.BadRequestError.
	Find(ctx context.Context, opts *query.Options) ([]Record, error)

	// Count returns the number of tasks matching filter.
	Count(ctx context.Context, filter query.Document) (int64, error)

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// CountExisting returns how many of ids resolve to stored tasks.
	// ids must not contain duplicates.
	CountExisting(ctx context.Context, ids []string) (int, error)

	// Create inserts a new task.
	Create(ctx context.Context, task *domain.Task) error

	// Update replaces every stored field of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id string) error

	// ClearAssignee unassigns every task currently owned by userID. When taskIDs
	// is non-nil only those tasks are considered; tasks that meanwhile point at
	// another user are left untouched. Returns the number of tasks changed.
	ClearAssignee(ctx context.Context, userID string, taskIDs []string) (int64, error)
}
