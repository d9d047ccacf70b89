package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service/assignment"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserInput is the validated payload of a user create or full update.
// PendingTasks must already be normalized with assignment.NormalizeIDs.
type UserInput struct {
	Name         string
	Email        string
	PendingTasks []string
}

// UserService provides the user collection operations.
type UserService interface {
	// List answers a list request.
	List(ctx context.Context, opts *query.Options) (*ListResult, error)

	// Get returns one user, projected by proj when non-nil.
	Get(ctx context.Context, id string, proj *query.Projection) (store.Record, error)

	// Create stores a new user and takes ownership of its pending tasks.
	Create(ctx context.Context, in UserInput) (*domain.User, error)

	// Update replaces a user's fields and re-derives ownership of its pending tasks.
	Update(ctx context.Context, id string, in UserInput) (*domain.User, error)

	// Delete removes a user and unassigns every task it owned.
	Delete(ctx context.Context, id string) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	sync   *assignment.Synchronizer
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users store.UserStore, sync *assignment.Synchronizer, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if sync == nil {
		return nil, errors.New("synchronizer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		users:  users,
		sync:   sync,
		logger: logger.With("component", "user_service"),
	}, nil
}

// List retrieves users or their count.
func (s *UserServiceImpl) List(ctx context.Context, opts *query.Options) (*ListResult, error) {
	result, err := list(ctx, s.users, opts)
	if err != nil {
		return nil, wrap("failed to list users", err)
	}
	return result, nil
}

// Get retrieves a user by ID.
func (s *UserServiceImpl) Get(ctx context.Context, id string, proj *query.Projection) (store.Record, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, invalidID("id", id)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("failed to retrieve user", err)
	}
	return store.ToRecord(user, proj)
}

// Create validates the input, checks that every pending task exists, stores
// the user and then points its pending tasks at it.
func (s *UserServiceImpl) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Name, in.Email, in.PendingTasks)
	if err != nil {
		return nil, err
	}

	if err := s.sync.EnsureTasksExist(ctx, "pendingTasks", user.PendingTasks); err != nil {
		return nil, wrap("failed to create user", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrap("failed to create user", err)
	}

	if err := s.sync.SyncUserPendingTasks(ctx, user, nil); err != nil {
		log.Error("user created but pending tasks not synchronized",
			"error", err,
			"user_id", user.ID)
		return nil, wrap("failed to synchronize pending tasks", err)
	}

	log.Info("user created successfully",
		"user_id", user.ID,
		"pending_tasks", len(user.PendingTasks))
	return user, nil
}

// Update replaces name, email and pending tasks of an existing user. Tasks
// dropped from the pending set are unassigned, tasks in it are (re)assigned to
// the user.
func (s *UserServiceImpl) Update(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return nil, invalidID("id", id)
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("failed to retrieve user for update", err)
	}
	previous := append([]string(nil), existing.PendingTasks...)

	user := existing.Clone()
	user.Name = strings.TrimSpace(in.Name)
	user.Email = domain.NormalizeEmail(in.Email)
	user.PendingTasks = in.PendingTasks
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.sync.EnsureTasksExist(ctx, "pendingTasks", user.PendingTasks); err != nil {
		return nil, wrap("failed to update user", err)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, wrap("failed to update user", err)
	}

	if err := s.sync.SyncUserPendingTasks(ctx, user, previous); err != nil {
		log.Error("user updated but pending tasks not synchronized",
			"error", err,
			"user_id", user.ID)
		return nil, wrap("failed to synchronize pending tasks", err)
	}

	log.Info("user updated successfully", "user_id", user.ID)
	return user, nil
}

// Delete removes the user and unassigns the tasks that pointed at it.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return invalidID("id", id)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return wrap("failed to delete user", err)
	}

	if err := s.sync.ReleaseUserTasks(ctx, id); err != nil {
		log.Error("user deleted but tasks not released",
			"error", err,
			"user_id", id)
		return wrap("failed to release user tasks", err)
	}

	log.Info("user deleted successfully", "user_id", id)
	return nil
}
