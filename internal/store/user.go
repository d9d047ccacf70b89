package store

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// UserStore defines the interface for user data persistence.
//
// Besides whole-document writes, it exposes the two pending-set primitives
// used by the assignment synchronizer. Both are idempotent single-document
// updates and silently match nothing when the user does not exist.
type UserStore interface {
	// Find returns the users matching opts.Filter, ordered, paged and projected per opts.
	// Invalid filter or sort fields are reported as *domain.BadRequestError.
	Find(ctx context.Context, opts *query.Options) ([]Record, error)

	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter query.Document) (int64, error)

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Create inserts a new user.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// Update replaces every stored field of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id string) error

	// AddPendingTask appends taskID to the user's pending set unless already present.
	AddPendingTask(ctx context.Context, userID, taskID string) error

	// RemovePendingTask removes taskID from the user's pending set if present.
	RemovePendingTask(ctx context.Context, userID, taskID string) error
}
