package assignment

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sync  *Synchronizer
	users *mocks.MemoryUserStore
	tasks *mocks.MemoryTaskStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := mocks.NewMemoryUserStore()
	tasks := mocks.NewMemoryTaskStore()
	s, err := NewSynchronizer(users, tasks, nil)
	require.NoError(t, err)
	return &fixture{sync: s, users: users, tasks: tasks}
}

func (f *fixture) addUser(t *testing.T, name string, pending ...string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, name+"@example.com", pending)
	require.NoError(t, err)
	f.users.Put(u)
	return u
}

func (f *fixture) addTask(t *testing.T, name string, owner *domain.User, completed bool) *domain.Task {
	t.Helper()
	deadline := time.Now().Add(24 * time.Hour)
	task, err := domain.NewTask(name, "", &deadline, completed)
	require.NoError(t, err)
	if owner != nil {
		task.AssignedUser = owner.ID
		task.AssignedUserName = owner.Name
		if !completed {
			require.NoError(t, f.users.AddPendingTask(context.Background(), owner.ID, task.ID))
		}
	}
	f.tasks.Put(task)
	return task
}

// assertConsistent checks both directions of the ownership invariant.
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	for _, task := range f.tasks.All() {
		if !task.IsAssigned() {
			assert.Equal(t, domain.UnassignedName, task.AssignedUserName, "task %s", task.Name)
		}
		if task.IsPending() {
			owner := f.users.User(task.AssignedUser)
			if assert.NotNil(t, owner, "owner of %s", task.Name) {
				assert.True(t, slices.Contains(owner.PendingTasks, task.ID), "%s missing from %s", task.Name, owner.Name)
			}
		}
	}
	for _, user := range f.users.All() {
		for _, id := range user.PendingTasks {
			task := f.tasks.Task(id)
			if assert.NotNil(t, task) {
				assert.Equal(t, user.ID, task.AssignedUser, "%s pending for %s", task.Name, user.Name)
				assert.False(t, task.Completed, "%s pending but completed", task.Name)
			}
		}
	}
}

func TestNewSynchronizer(t *testing.T) {
	_, err := NewSynchronizer(nil, mocks.NewMemoryTaskStore(), nil)
	assert.Error(t, err)
	_, err = NewSynchronizer(mocks.NewMemoryUserStore(), nil, nil)
	assert.Error(t, err)
}

func TestAttachDetach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.addUser(t, "ada")

	t.Run("attach is idempotent", func(t *testing.T) {
		require.NoError(t, f.sync.AttachTask(ctx, "t1", u.ID))
		require.NoError(t, f.sync.AttachTask(ctx, "t1", u.ID))
		assert.Equal(t, []string{"t1"}, f.users.User(u.ID).PendingTasks)
	})

	t.Run("detach is idempotent", func(t *testing.T) {
		require.NoError(t, f.sync.DetachTask(ctx, "t1", u.ID))
		require.NoError(t, f.sync.DetachTask(ctx, "t1", u.ID))
		assert.Empty(t, f.users.User(u.ID).PendingTasks)
	})

	t.Run("empty user is a no-op", func(t *testing.T) {
		f.users.AddPendingTaskFn = func(context.Context, string, string) error {
			t.Fatal("store must not be called")
			return nil
		}
		f.users.RemovePendingTaskFn = f.users.AddPendingTaskFn
		defer func() {
			f.users.AddPendingTaskFn = nil
			f.users.RemovePendingTaskFn = nil
		}()
		assert.NoError(t, f.sync.AttachTask(ctx, "t1", ""))
		assert.NoError(t, f.sync.DetachTask(ctx, "t1", ""))
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		f.users.AddPendingTaskFn = func(context.Context, string, string) error { return boom }
		defer func() { f.users.AddPendingTaskFn = nil }()
		err := f.sync.AttachTask(ctx, "t1", u.ID)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAssignTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addUser(t, "ada")
	b := f.addUser(t, "bob")
	task := f.addTask(t, "report", a, false)

	require.NoError(t, f.sync.AssignTask(ctx, task, b))

	assert.Equal(t, b.ID, task.AssignedUser)
	assert.Equal(t, "bob", task.AssignedUserName)
	assert.Empty(t, f.users.User(a.ID).PendingTasks, "detached from previous owner")
	assert.Empty(t, f.users.User(b.ID).PendingTasks, "assign does not attach")
	assert.Equal(t, a.ID, f.tasks.Task(task.ID).AssignedUser, "assign does not persist")
}

func TestAssignTask_SameOwnerKeepsPendingSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addUser(t, "ada")
	task := f.addTask(t, "report", a, false)

	require.NoError(t, f.sync.AssignTask(ctx, task, a))
	assert.Equal(t, []string{task.ID}, f.users.User(a.ID).PendingTasks)
}

func TestUnassignTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addUser(t, "ada")
	task := f.addTask(t, "report", a, false)

	require.NoError(t, f.sync.UnassignTask(ctx, task))

	assert.Empty(t, task.AssignedUser)
	assert.Equal(t, domain.UnassignedName, task.AssignedUserName)
	assert.Empty(t, f.users.User(a.ID).PendingTasks)
}

func TestSyncTaskOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("reassigning moves the task between pending sets", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		b := f.addUser(t, "bob")
		task := f.addTask(t, "report", a, false)

		task.AssignedUser, task.AssignedUserName = b.ID, b.Name
		require.NoError(t, f.tasks.Update(ctx, task))
		require.NoError(t, f.sync.SyncTaskOwner(ctx, task, a.ID))

		assert.Empty(t, f.users.User(a.ID).PendingTasks)
		assert.Equal(t, []string{task.ID}, f.users.User(b.ID).PendingTasks)
		f.assertConsistent(t)
	})

	t.Run("completing removes the task from the owner", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		task := f.addTask(t, "report", a, false)

		task.Completed = true
		require.NoError(t, f.tasks.Update(ctx, task))
		require.NoError(t, f.sync.SyncTaskOwner(ctx, task, a.ID))

		assert.Empty(t, f.users.User(a.ID).PendingTasks)
		f.assertConsistent(t)
	})

	t.Run("reopening adds the task back", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		task := f.addTask(t, "report", a, true)

		task.Completed = false
		require.NoError(t, f.tasks.Update(ctx, task))
		require.NoError(t, f.sync.SyncTaskOwner(ctx, task, a.ID))

		assert.Equal(t, []string{task.ID}, f.users.User(a.ID).PendingTasks)
		f.assertConsistent(t)
	})

	t.Run("unassigned task touches no user", func(t *testing.T) {
		f := newFixture(t)
		task := f.addTask(t, "report", nil, false)
		assert.NoError(t, f.sync.SyncTaskOwner(ctx, task, ""))
		f.assertConsistent(t)
	})
}

func TestSyncUserPendingTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("takes tasks from other owners and reopens them", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		b := f.addUser(t, "bob")
		fromB := f.addTask(t, "from bob", b, false)
		done := f.addTask(t, "done", nil, true)

		a.PendingTasks = []string{fromB.ID, done.ID}
		f.users.Put(a)
		require.NoError(t, f.sync.SyncUserPendingTasks(ctx, a, nil))

		assert.Empty(t, f.users.User(b.ID).PendingTasks)
		for _, id := range a.PendingTasks {
			task := f.tasks.Task(id)
			assert.Equal(t, a.ID, task.AssignedUser)
			assert.Equal(t, "ada", task.AssignedUserName)
			assert.False(t, task.Completed)
		}
		f.assertConsistent(t)
	})

	t.Run("removed tasks still owned by the user are unassigned", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		b := f.addUser(t, "bob")
		keep := f.addTask(t, "keep", a, false)
		drop := f.addTask(t, "drop", a, false)
		moved := f.addTask(t, "moved", b, false)

		previous := []string{keep.ID, drop.ID, moved.ID}
		a.PendingTasks = []string{keep.ID}
		f.users.Put(a)
		require.NoError(t, f.sync.SyncUserPendingTasks(ctx, a, previous))

		dropped := f.tasks.Task(drop.ID)
		assert.Empty(t, dropped.AssignedUser)
		assert.Equal(t, domain.UnassignedName, dropped.AssignedUserName)
		assert.Equal(t, b.ID, f.tasks.Task(moved.ID).AssignedUser, "tasks owned by others are untouched")
		f.assertConsistent(t)
	})

	t.Run("vanished task is skipped", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		kept := f.addTask(t, "kept", nil, false)

		a.PendingTasks = []string{domain.NewID(), kept.ID}
		require.NoError(t, f.sync.SyncUserPendingTasks(ctx, a, nil))
		assert.Equal(t, a.ID, f.tasks.Task(kept.ID).AssignedUser)
	})

	t.Run("store failure stops the sync", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, "ada")
		task := f.addTask(t, "t", nil, false)
		boom := errors.New("boom")
		f.tasks.UpdateFn = func(context.Context, *domain.Task) error { return boom }

		a.PendingTasks = []string{task.ID}
		err := f.sync.SyncUserPendingTasks(ctx, a, nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestReleaseUserTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addUser(t, "ada")
	b := f.addUser(t, "bob")
	open := f.addTask(t, "open", a, false)
	closed := f.addTask(t, "closed", a, true)
	other := f.addTask(t, "other", b, false)

	require.NoError(t, f.sync.ReleaseUserTasks(ctx, a.ID))

	for _, id := range []string{open.ID, closed.ID} {
		task := f.tasks.Task(id)
		assert.Empty(t, task.AssignedUser)
		assert.Equal(t, domain.UnassignedName, task.AssignedUserName)
	}
	assert.Equal(t, b.ID, f.tasks.Task(other.ID).AssignedUser)
}

func TestEnsureTasksExist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, "t", nil, false)

	assert.NoError(t, f.sync.EnsureTasksExist(ctx, "pendingTasks", nil))
	assert.NoError(t, f.sync.EnsureTasksExist(ctx, "pendingTasks", []string{task.ID}))

	err := f.sync.EnsureTasksExist(ctx, "pendingTasks", []string{task.ID, domain.NewID()})
	bre, ok := domain.AsBadRequest(err)
	require.True(t, ok)
	assert.Equal(t, "pendingTasks", bre.Field)
}

func TestDifference(t *testing.T) {
	assert.Nil(t, difference(nil, []string{"a"}))
	assert.Equal(t, []string{"a", "c"}, difference([]string{"a", "b", "c"}, []string{"b"}))
	assert.Nil(t, difference([]string{"a"}, []string{"a"}))
}
