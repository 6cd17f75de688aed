// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject storage failures

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/habit-streaks/internal/streak"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	habits   map[string]*Habit     // keyed by "owner\x00name"
	checkIns map[string][]*CheckIn // keyed by "owner\x00name", oldest first
	err      error                 // returned by every call when set
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		habits:   make(map[string]*Habit),
		checkIns: make(map[string][]*CheckIn),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func habitKey(owner, name string) string {
	return owner + "\x00" + name
}

// CreateIfAbsent stores a new habit unless one already exists.
func (m *MockStore) CreateIfAbsent(ctx context.Context, owner, name string, today streak.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	key := habitKey(owner, name)
	if _, exists := m.habits[key]; exists {
		return false, nil
	}

	m.habits[key] = &Habit{
		Owner:       owner,
		Name:        name,
		StartDate:   today,
		LastUpdated: today,
		StreakCount: 1,
	}
	return true, nil
}

// Get retrieves a copy of a habit.
func (m *MockStore) Get(ctx context.Context, owner, name string) (*Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	h, ok := m.habits[habitKey(owner, name)]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *h
	return &result, nil
}

// ListForOwner returns copies of an owner's habits ordered by name.
func (m *MockStore) ListForOwner(ctx context.Context, owner string) ([]*Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	var habits []*Habit
	for _, h := range m.habits {
		if h.Owner == owner {
			c := *h
			habits = append(habits, &c)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].Name < habits[j].Name
	})
	return habits, nil
}

// UpdateCheckIn overwrites the last check-in day and streak.
func (m *MockStore) UpdateCheckIn(ctx context.Context, owner, name string, lastUpdated streak.Date, streakCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	h, ok := m.habits[habitKey(owner, name)]
	if !ok {
		return ErrNotFound
	}

	h.LastUpdated = lastUpdated
	h.StreakCount = streakCount
	return nil
}

// Remove deletes a habit and its check-ins.
func (m *MockStore) Remove(ctx context.Context, owner, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	key := habitKey(owner, name)
	delete(m.checkIns, key)
	if _, ok := m.habits[key]; !ok {
		return false, nil
	}
	delete(m.habits, key)
	return true, nil
}

// RecordCheckIn appends a copy of c to the history.
func (m *MockStore) RecordCheckIn(ctx context.Context, c *CheckIn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	key := habitKey(c.Owner, c.Habit)
	cp := *c
	m.checkIns[key] = append(m.checkIns[key], &cp)
	return nil
}

// ListCheckIns returns copies of a habit's check-ins, newest first.
func (m *MockStore) ListCheckIns(ctx context.Context, owner, name string, limit int) ([]*CheckIn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}

	history := m.checkIns[habitKey(owner, name)]
	result := make([]*CheckIn, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		c := *history[i]
		result = append(result, &c)
	}

	// Same order as SQLite: by day, then most recently recorded.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Day.After(result[j].Day)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountCheckIns returns the number of recorded check-ins for a habit.
func (m *MockStore) CountCheckIns(ctx context.Context, owner, name string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return 0, m.err
	}
	return len(m.checkIns[habitKey(owner, name)]), nil
}

// Ping reports the injected failure, if any.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)
