package mocks

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MemoryUserStore implements store.UserStore in memory.
type MemoryUserStore struct {
	// Function fields for customizable behavior
	FindFn              func(ctx context.Context, opts *query.Options) ([]store.Record, error)
	CountFn             func(ctx context.Context, filter query.Document) (int64, error)
	GetByIDFn           func(ctx context.Context, id string) (*domain.User, error)
	CreateFn            func(ctx context.Context, user *domain.User) error
	UpdateFn            func(ctx context.Context, user *domain.User) error
	DeleteFn            func(ctx context.Context, id string) error
	AddPendingTaskFn    func(ctx context.Context, userID, taskID string) error
	RemovePendingTaskFn func(ctx context.Context, userID, taskID string) error

	mu    sync.Mutex
	users map[string]*domain.User
	// FindCalls counts Find invocations.
	FindCalls int
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.User)}
}

// Put stores a copy of user as-is, bypassing validation and uniqueness.
func (m *MemoryUserStore) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user.Clone()
}

// User returns a copy of the stored user, or nil.
func (m *MemoryUserStore) User(id string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.Clone()
	}
	return nil
}

// All returns copies of every stored user ordered by creation time.
func (m *MemoryUserStore) All() []*domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked()
}

func (m *MemoryUserStore) sortedLocked() []*domain.User {
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateCreated.Before(out[j].DateCreated)
	})
	return out
}

func (m *MemoryUserStore) records() ([]store.Record, error) {
	users := m.sortedLocked()
	out := make([]store.Record, 0, len(users))
	for _, u := range users {
		r, err := store.ToRecord(u, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Find implements store.UserStore.
func (m *MemoryUserStore) Find(ctx context.Context, opts *query.Options) ([]store.Record, error) {
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

// Count implements store.UserStore.
func (m *MemoryUserStore) Count(ctx context.Context, filter query.Document) (int64, error) {
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

// GetByID implements store.UserStore.
func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if u := m.User(id); u != nil {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

// Create implements store.UserStore.
func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(user.Email, "") {
		return store.ErrEmailExists
	}
	m.users[user.ID] = user.Clone()
	return nil
}

// Update implements store.UserStore.
func (m *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	m.users[user.ID] = user.Clone()
	return nil
}

func (m *MemoryUserStore) emailTakenLocked(email, exceptID string) bool {
	email = domain.NormalizeEmail(email)
	for id, u := range m.users {
		if id != exceptID && domain.NormalizeEmail(u.Email) == email {
			return true
		}
	}
	return false
}

// Delete implements store.UserStore.
func (m *MemoryUserStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// AddPendingTask implements store.UserStore.
func (m *MemoryUserStore) AddPendingTask(ctx context.Context, userID, taskID string) error {
	if m.AddPendingTaskFn != nil {
		return m.AddPendingTaskFn(ctx, userID, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok || slices.Contains(u.PendingTasks, taskID) {
		return nil
	}
	u.PendingTasks = append(u.PendingTasks, taskID)
	return nil
}

// RemovePendingTask implements store.UserStore.
func (m *MemoryUserStore) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	if m.RemovePendingTaskFn != nil {
		return m.RemovePendingTaskFn(ctx, userID, taskID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	kept := u.PendingTasks[:0]
	for _, id := range u.PendingTasks {
		if id != taskID {
			kept = append(kept, id)
		}
	}
	u.PendingTasks = kept
	return nil
}
