package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/service/assignment"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskInput is the validated payload of a task create or full update.
// An empty AssignedUser leaves the task unassigned.
type TaskInput struct {
	Name         string
	Description  string
	Deadline     *time.Time
	Completed    bool
	AssignedUser string
}

// TaskService provides the task collection operations.
type TaskService interface {
	// List answers a list request.
	List(ctx context.Context, opts *query.Options) (*ListResult, error)

	// Get returns one task, projected by proj when non-nil.
	Get(ctx context.Context, id string, proj *query.Projection) (store.Record, error)

	// Create stores a new task and records it in its owner's pending set.
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)

	// Update replaces a task's fields and moves it between pending sets as needed.
	Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error)

	// Delete removes a task and drops it from its owner's pending set.
	Delete(ctx context.Context, id string) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks  store.TaskStore
	users  store.UserStore
	sync   *assignment.Synchronizer
	logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	sync *assignment.Synchronizer,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if sync == nil {
		return nil, errors.New("synchronizer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskServiceImpl{
		tasks:  tasks,
		users:  users,
		sync:   sync,
		logger: logger.With("component", "task_service"),
	}, nil
}

// List retrieves tasks or their count.
func (s *TaskServiceImpl) List(ctx context.Context, opts *query.Options) (*ListResult, error) {
	result, err := list(ctx, s.tasks, opts)
	if err != nil {
		return nil, wrap("failed to list tasks", err)
	}
	return result, nil
}

// Get retrieves a task by ID.
func (s *TaskServiceImpl) Get(ctx context.Context, id string, proj *query.Projection) (store.Record, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, invalidID("id", id)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("failed to retrieve task", err)
	}
	return store.ToRecord(task, proj)
}

// Create validates the input, resolves the owner, stores the task and then
// attaches it to the owner's pending set unless it is already completed.
func (s *TaskServiceImpl) Create(ctx context.Context, in TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(in.Name, in.Description, in.Deadline, in.Completed)
	if err != nil {
		return nil, err
	}

	owner, err := s.resolveOwner(ctx, in.AssignedUser)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		if err := s.sync.AssignTask(ctx, task, owner); err != nil {
			return nil, wrap("failed to assign task", err)
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, wrap("failed to create task", err)
	}

	if err := s.sync.SyncTaskOwner(ctx, task, ""); err != nil {
		log.Error("task created but owner not synchronized",
			"error", err,
			"task_id", task.ID)
		return nil, wrap("failed to synchronize task owner", err)
	}

	log.Info("task created successfully",
		"task_id", task.ID,
		"assigned_user", task.AssignedUser)
	return task, nil
}

// Update replaces every field of an existing task. Omitted optional fields
// take their defaults, and an omitted deadline fails validation just as on
// create. When the owner changes the task leaves the previous owner's pending
// set; completion decides whether it sits in the new owner's.
func (s *TaskServiceImpl) Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return nil, invalidID("id", id)
	}

	existing, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("failed to retrieve task for update", err)
	}
	previousOwner := existing.AssignedUser

	task := existing.Clone()
	task.Name = strings.TrimSpace(in.Name)
	task.Description = in.Description
	task.Deadline = in.Deadline
	task.Completed = in.Completed
	if err := task.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.resolveOwner(ctx, in.AssignedUser)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		err = s.sync.AssignTask(ctx, task, owner)
	} else {
		err = s.sync.UnassignTask(ctx, task)
	}
	if err != nil {
		return nil, wrap("failed to update task owner", err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, wrap("failed to update task", err)
	}

	if err := s.sync.SyncTaskOwner(ctx, task, previousOwner); err != nil {
		log.Error("task updated but owner not synchronized",
			"error", err,
			"task_id", task.ID)
		return nil, wrap("failed to synchronize task owner", err)
	}

	log.Info("task updated successfully",
		"task_id", task.ID,
		"previous_owner", previousOwner,
		"assigned_user", task.AssignedUser,
		"completed", task.Completed)
	return task, nil
}

// Delete removes the task and detaches it from its owner.
func (s *TaskServiceImpl) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return invalidID("id", id)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return wrap("failed to retrieve task for delete", err)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return wrap("failed to delete task", err)
	}

	if err := s.sync.DetachTask(ctx, task.ID, task.AssignedUser); err != nil {
		log.Error("task deleted but not detached from owner",
			"error", err,
			"task_id", id,
			"assigned_user", task.AssignedUser)
		return wrap("failed to detach deleted task", err)
	}

	log.Info("task deleted successfully", "task_id", id)
	return nil
}

// resolveOwner loads the user a task should be assigned to. An empty id means
// unassigned and yields nil. An unknown or malformed id is a bad request.
func (s *TaskServiceImpl) resolveOwner(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, nil
	}
	if err := domain.ValidateID(userID); err != nil {
		return nil, invalidID("assignedUser", userID)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewBadRequest("assignedUser", "user %q does not exist", userID)
		}
		return nil, wrap("failed to resolve assigned user", err)
	}
	return user, nil
}
