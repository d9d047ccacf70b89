package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore is the subset of store.UserStore the synchronizer needs.
type UserStore interface {
	AddPendingTask(ctx context.Context, userID, taskID string) error
	RemovePendingTask(ctx context.Context, userID, taskID string) error
}

// TaskStore is the subset of store.TaskStore the synchronizer needs.
type TaskStore interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	CountExisting(ctx context.Context, ids []string) (int, error)
	ClearAssignee(ctx context.Context, userID string, taskIDs []string) (int64, error)
}

// Synchronizer owns every write to the other side of a task/user relationship.
type Synchronizer struct {
	users  UserStore
	tasks  TaskStore
	logger *slog.Logger
}

// NewSynchronizer creates a Synchronizer over the given stores.
func NewSynchronizer(users UserStore, tasks TaskStore, logger *slog.Logger) (*Synchronizer, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Synchronizer{
		users:  users,
		tasks:  tasks,
		logger: logger.With(slog.String("component", "assignment_synchronizer")),
	}, nil
}

// DetachTask removes taskID from userID's pending set. An empty userID is a no-op.
func (s *Synchronizer) DetachTask(ctx context.Context, taskID, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.users.RemovePendingTask(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to detach task %s from user %s: %w", taskID, userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task detached",
		slog.String("task_id", taskID),
		slog.String("user_id", userID))
	return nil
}

// AttachTask adds taskID to userID's pending set if it is not already there.
// An empty userID is a no-op.
func (s *Synchronizer) AttachTask(ctx context.Context, taskID, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.users.AddPendingTask(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to attach task %s to user %s: %w", taskID, userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task attached",
		slog.String("task_id", taskID),
		slog.String("user_id", userID))
	return nil
}

// AssignTask points task at user. If the task currently belongs to a different
// user it is detached from that user first. AssignTask neither saves the task
// nor attaches it to user's pending set; SyncTaskOwner does the latter once the
// task's completion state is final.
func (s *Synchronizer) AssignTask(ctx context.Context, task *domain.Task, user *domain.User) error {
	if task.AssignedUser != "" && task.AssignedUser != user.ID {
		if err := s.DetachTask(ctx, task.ID, task.AssignedUser); err != nil {
			return err
		}
	}

	task.AssignedUser = user.ID
	task.AssignedUserName = user.Name
	return nil
}

// UnassignTask detaches task from its current owner, if any, and clears the
// owner pointer. The task is not saved.
func (s *Synchronizer) UnassignTask(ctx context.Context, task *domain.Task) error {
	if err := s.DetachTask(ctx, task.ID, task.AssignedUser); err != nil {
		return err
	}

	task.AssignedUser = ""
	task.AssignedUserName = domain.UnassignedName
	return nil
}

// SyncTaskOwner brings pending sets in line with a task that has just been
// written. previousOwner is the task's owner before the write. The task is
// detached from previousOwner when ownership changed, then attached to its
// current owner when incomplete or detached from it when completed.
func (s *Synchronizer) SyncTaskOwner(ctx context.Context, task *domain.Task, previousOwner string) error {
	if previousOwner != "" && previousOwner != task.AssignedUser {
		if err := s.DetachTask(ctx, task.ID, previousOwner); err != nil {
			return err
		}
	}

	if task.IsPending() {
		return s.AttachTask(ctx, task.ID, task.AssignedUser)
	}
	return s.DetachTask(ctx, task.ID, task.AssignedUser)
}

// SyncUserPendingTasks re-derives owner pointers after user's pending set was
// written. previous holds the pending set before the write (nil on create).
//
// Tasks dropped from the set that still point at user become unassigned; tasks
// that meanwhile moved to another user are left alone. Every task in the new
// set is then taken from any other owner, pointed at user and marked
// incomplete, one task at a time.
func (s *Synchronizer) SyncUserPendingTasks(ctx context.Context, user *domain.User, previous []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if removed := difference(previous, user.PendingTasks); len(removed) > 0 {
		n, err := s.tasks.ClearAssignee(ctx, user.ID, removed)
		if err != nil {
			return fmt.Errorf("failed to unassign tasks removed from user %s: %w", user.ID, err)
		}
		log.Debug("unassigned tasks removed from pending set",
			slog.String("user_id", user.ID),
			slog.Int("removed", len(removed)),
			slog.Int64("unassigned", n))
	}

	for _, taskID := range user.PendingTasks {
		task, err := s.tasks.GetByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				// deleted since the existence check
				log.Warn("pending task vanished during sync",
					slog.String("user_id", user.ID),
					slog.String("task_id", taskID))
				continue
			}
			return fmt.Errorf("failed to load pending task %s: %w", taskID, err)
		}

		if task.AssignedUser != "" && task.AssignedUser != user.ID {
			if err := s.DetachTask(ctx, task.ID, task.AssignedUser); err != nil {
				return err
			}
		}

		task.AssignedUser = user.ID
		task.AssignedUserName = user.Name
		task.Completed = false

		if err := s.tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to assign pending task %s to user %s: %w", taskID, user.ID, err)
		}
	}

	log.Debug("user pending tasks synchronized",
		slog.String("user_id", user.ID),
		slog.Int("pending", len(user.PendingTasks)))
	return nil
}

// ReleaseUserTasks unassigns every task owned by userID. It is used when the
// user is deleted.
func (s *Synchronizer) ReleaseUserTasks(ctx context.Context, userID string) error {
	n, err := s.tasks.ClearAssignee(ctx, userID, nil)
	if err != nil {
		return fmt.Errorf("failed to release tasks of user %s: %w", userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("released tasks of user",
		slog.String("user_id", userID),
		slog.Int64("unassigned", n))
	return nil
}

// EnsureTasksExist fails with a bad request on field unless every id in ids
// names a stored task. ids must already be normalized.
func (s *Synchronizer) EnsureTasksExist(ctx context.Context, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	n, err := s.tasks.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %w", err)
	}
	if n != len(ids) {
		return domain.NewBadRequest(field, "references tasks that do not exist")
	}
	return nil
}

// difference returns the elements of a that are not in b, preserving order.
func difference(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}

	var out []string
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
