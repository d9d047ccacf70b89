package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MemoryTaskStore implements store.TaskStore in memory.
type MemoryTaskStore struct {
	FindFn          func(ctx context.Context, opts *query.Options) ([]store.Record, error)
	CountFn         func(ctx context.Context, filter query.Document) (int64, error)
	GetByIDFn       func(ctx context.Context, id string) (*domain.Task, error)
	CountExistingFn func(ctx context.Context, ids []string) (int, error)
	CreateFn        func(ctx context.Context, task *domain.Task) error
	UpdateFn        func(ctx context.Context, task *domain.Task) error
	DeleteFn        func(ctx context.Context, id string) error
	ClearAssigneeFn func(ctx context.Context, userID string, taskIDs []string) (int64, error)

	mu    sync.Mutex
	tasks map[string]*domain.Task
	// FindCalls counts Find invocations.
	FindCalls int
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]*domain.Task)}
}

// Put stores a copy of task as-is.
func (m *MemoryTaskStore) Put(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task.Clone()
}

// Task returns a copy of the stored task, or nil.
func (m *MemoryTaskStore) Task(id string) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		return t.Clone()
	}
	return nil
}

// All returns copies of every stored task ordered by creation time.
func (m *MemoryTaskStore) All() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked()
}

func (m *MemoryTaskStore) sortedLocked() []*domain.Task {
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateCreated.Before(out[j].DateCreated)
	})
	return out
}

func (m *MemoryTaskStore) records() ([]store.Record, error) {
	tasks := m.sortedLocked()
	out := make([]store.Record, 0, len(tasks))
	for _, t := range tasks {
		r, err := store.ToRecord(t, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Find implements store.TaskStore.
func (m *MemoryTaskStore) Find(ctx context.Context, opts *query.Options) ([]store.Record, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, opts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++

	all, err := m.records()
	if err != nil {
		return nil, err
	}
	return selectRecords(all, opts)
}

// Count implements store.TaskStore.
func (m *MemoryTaskStore) Count(ctx context.Context, filter query.Document) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.records()
	if err != nil {
		return 0, err
	}
	matched, err := filterRecords(all, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// GetByID implements store.TaskStore.
func (m *MemoryTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if t := m.Task(id); t != nil {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

// CountExisting implements store.TaskStore.
func (m *MemoryTaskStore) CountExisting(ctx context.Context, ids []string) (int, error) {
	if m.CountExistingFn != nil {
		return m.CountExistingFn(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := m.tasks[id]; ok {
			n++
		}
	}
	return n, nil
}

// Create implements store.TaskStore.
func (m *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.Put(task)
	return nil
}

// Update implements store.TaskStore.
func (m *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	m.tasks[task.ID] = task.Clone()
	return nil
}

// Delete implements store.TaskStore.
func (m *MemoryTaskStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// ClearAssignee implements store.TaskStore.
func (m *MemoryTaskStore) ClearAssignee(ctx context.Context, userID string, taskIDs []string) (int64, error) {
	if m.ClearAssigneeFn != nil {
		return m.ClearAssigneeFn(ctx, userID, taskIDs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var scope map[string]bool
	if taskIDs != nil {
		scope = make(map[string]bool, len(taskIDs))
		for _, id := range taskIDs {
			scope[id] = true
		}
	}

	var n int64
	for id, t := range m.tasks {
		if t.AssignedUser != userID || (scope != nil && !scope[id]) {
			continue
		}
		t.AssignedUser = ""
		t.AssignedUserName = domain.UnassignedName
		n++
	}
	return n, nil
}
