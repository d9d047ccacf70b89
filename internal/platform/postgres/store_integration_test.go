//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *sql.DB

// TestMain connects once and applies the migrations before any test runs.
// Without DATABASE_URL the package is skipped.
func TestMain(m *testing.M) {
	db, err := testdb.Open(context.Background())
	if errors.Is(err, testdb.ErrNoDatabaseURL) {
		fmt.Println("DATABASE_URL not set, skipping postgres integration tests")
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("Failed to prepare test database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()
	if err := testDB.Close(); err != nil {
		fmt.Printf("Failed to close database connection: %v\n", err)
	}
	os.Exit(code)
}

func withTx(t *testing.T, fn func(ctx context.Context, tx *sql.Tx)) {
	t.Helper()
	testdb.WithTx(t, testDB, fn)
}

func newUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, name+"-"+domain.NewID()[:8]+"@example.com", nil)
	require.NoError(t, err)
	return u
}

func newTask(t *testing.T, name string) *domain.Task {
	t.Helper()
	d := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(name, "", &d, false)
	require.NoError(t, err)
	return task
}

func TestUserStoreCRUD(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		u := newUser(t, "ada")

		require.NoError(t, users.Create(ctx, u))

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, []string{}, got.PendingTasks)

		u.Name = "Ada L"
		require.NoError(t, users.Update(ctx, u))
		got, err = users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada L", got.Name)

		require.NoError(t, users.Delete(ctx, u.ID))
		_, err = users.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.ErrorIs(t, users.Delete(ctx, u.ID), store.ErrUserNotFound)
		assert.ErrorIs(t, users.Update(ctx, u), store.ErrUserNotFound)
	})
}

func TestUserStoreEmailUniqueIgnoresCase(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		u := newUser(t, "ada")
		require.NoError(t, users.Create(ctx, u))

		dup := newUser(t, "other")
		dup.Email = strings.ToUpper(u.Email)
		err := users.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestUserStorePendingSet(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		u := newUser(t, "ada")
		require.NoError(t, users.Create(ctx, u))

		require.NoError(t, users.AddPendingTask(ctx, u.ID, "t1"))
		require.NoError(t, users.AddPendingTask(ctx, u.ID, "t2"))
		require.NoError(t, users.AddPendingTask(ctx, u.ID, "t1"))
		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, got.PendingTasks)

		require.NoError(t, users.RemovePendingTask(ctx, u.ID, "t1"))
		require.NoError(t, users.RemovePendingTask(ctx, u.ID, "t1"))
		got, err = users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"t2"}, got.PendingTasks)

		assert.NoError(t, users.AddPendingTask(ctx, domain.NewID(), "t1"), "unknown user matches nothing")
	})
}

func TestTaskStoreFindAndCount(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		owner := domain.NewID()
		for i, name := range []string{"b", "a", "c"} {
			task := newTask(t, fmt.Sprintf("%s-%s", owner[:8], name))
			task.AssignedUser = owner
			task.Completed = i == 2
			require.NoError(t, tasks.Create(ctx, task))
		}

		opts := &query.Options{
			Filter:     query.Document{"assignedUser": owner},
			Sort:       []query.SortField{{Field: "name", Descending: true}},
			Projection: &query.Projection{Fields: []string{"name"}, ExcludeID: true},
			Limit:      2,
		}
		records, err := tasks.Find(ctx, opts)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, store.Record{"name": owner[:8] + "-c"}, records[0])
		assert.Equal(t, store.Record{"name": owner[:8] + "-b"}, records[1])

		n, err := tasks.Count(ctx, query.Document{"assignedUser": owner, "completed": false})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}

func TestTaskStoreClearAssignee(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		owner, other := domain.NewID(), domain.NewID()

		mine1, mine2, theirs := newTask(t, "m1"), newTask(t, "m2"), newTask(t, "t")
		mine1.AssignedUser, mine2.AssignedUser, theirs.AssignedUser = owner, owner, other
		for _, task := range []*domain.Task{mine1, mine2, theirs} {
			require.NoError(t, tasks.Create(ctx, task))
		}

		n, err := tasks.ClearAssignee(ctx, owner, []string{mine1.ID, theirs.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = tasks.ClearAssignee(ctx, owner, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		got, err := tasks.GetByID(ctx, mine2.ID)
		require.NoError(t, err)
		assert.Empty(t, got.AssignedUser)
		assert.Equal(t, domain.UnassignedName, got.AssignedUserName)

		got, err = tasks.GetByID(ctx, theirs.ID)
		require.NoError(t, err)
		assert.Equal(t, other, got.AssignedUser)

		count, err := tasks.CountExisting(ctx, []string{mine1.ID, theirs.ID, domain.NewID()})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
