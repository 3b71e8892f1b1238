package pending

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
)

// Memory is a process-lifetime outbox used when the local store is down.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.PendingSubmission
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[int64]domain.PendingSubmission),
		now:   time.Now,
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Add(_ context.Context, s domain.PendingSubmission) (domain.PendingSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	s.ID = m.nextID
	s.Timestamp = m.now().UTC()
	s.Synced = false
	m.items[s.ID] = s
	return s, nil
}

func (m *Memory) List(_ context.Context) ([]domain.PendingSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.PendingSubmission, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, id)
	return nil
}

// Clear drops every item but keeps the ID counter so IDs stay unique.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[int64]domain.PendingSubmission)
	return nil
}
