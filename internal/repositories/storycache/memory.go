package storycache

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
)

type Memory struct {
	mu       sync.RWMutex
	snapshot []domain.CachedStory
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Replace(_ context.Context, stories []domain.Story) error {
	cachedAt := m.now().UTC()
	deduped := dedupe(stories)
	next := make([]domain.CachedStory, 0, len(deduped))
	for _, s := range deduped {
		next = append(next, domain.CachedStory{Story: s, Timestamp: cachedAt})
	}

	m.mu.Lock()
	m.snapshot = next
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context) ([]domain.CachedStory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.CachedStory, len(m.snapshot))
	copy(out, m.snapshot)
	return out, nil
}
