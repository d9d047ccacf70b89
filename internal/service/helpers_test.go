package service_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/assignment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	users    *mocks.MemoryUserStore
	tasks    *mocks.MemoryTaskStore
	userSvc  service.UserService
	taskSvc  service.TaskService
	deadline time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	users := mocks.NewMemoryUserStore()
	tasks := mocks.NewMemoryTaskStore()

	sync, err := assignment.NewSynchronizer(users, tasks, nil)
	require.NoError(t, err)
	userSvc, err := service.NewUserService(users, sync, nil)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, users, sync, nil)
	require.NoError(t, err)

	return &env{
		users:    users,
		tasks:    tasks,
		userSvc:  userSvc,
		taskSvc:  taskSvc,
		deadline: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (e *env) createUser(t *testing.T, name string, pending ...string) *domain.User {
	t.Helper()
	u, err := e.userSvc.Create(context.Background(), service.UserInput{
		Name:         name,
		Email:        name + "@example.com",
		PendingTasks: pending,
	})
	require.NoError(t, err)
	return u
}

func (e *env) createTask(t *testing.T, name, owner string, completed bool) *domain.Task {
	t.Helper()
	d := e.deadline
	task, err := e.taskSvc.Create(context.Background(), service.TaskInput{
		Name:         name,
		Deadline:     &d,
		Completed:    completed,
		AssignedUser: owner,
	})
	require.NoError(t, err)
	return task
}

// assertConsistent checks that owner pointers and pending sets agree.
func (e *env) assertConsistent(t *testing.T) {
	t.Helper()
	for _, task := range e.tasks.All() {
		if task.IsPending() {
			owner := e.users.User(task.AssignedUser)
			if assert.NotNil(t, owner, "owner of %s", task.Name) {
				assert.True(t, slices.Contains(owner.PendingTasks, task.ID), "%s missing from %s", task.Name, owner.Name)
				assert.Equal(t, owner.Name, task.AssignedUserName)
			}
		}
		if !task.IsAssigned() {
			assert.Equal(t, domain.UnassignedName, task.AssignedUserName)
		}
	}
	for _, user := range e.users.All() {
		for _, id := range user.PendingTasks {
			task := e.tasks.Task(id)
			if assert.NotNil(t, task, "pending task %s of %s", id, user.Name) {
				assert.Equal(t, user.ID, task.AssignedUser)
				assert.False(t, task.Completed)
			}
		}
	}
}

func assertBadRequest(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	bre, ok := domain.AsBadRequest(err)
	require.True(t, ok, "expected bad request, got %v", err)
	assert.Equal(t, field, bre.Field)
}
