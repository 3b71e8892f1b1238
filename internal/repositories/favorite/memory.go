package favorite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
)

// Memory keeps favorites for the life of the process only. It stands in
// when the local store cannot be opened.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]domain.FavoriteEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]domain.FavoriteEntry),
		now:     time.Now,
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Add(_ context.Context, story domain.Story) (domain.FavoriteEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[story.ID]; ok {
		return domain.FavoriteEntry{}, apperrors.WrapWithCode(apperrors.ErrDuplicateKey,
			"duplicate_key", fmt.Sprintf("story %s is already a favorite", story.ID))
	}
	entry := domain.FavoriteEntry{Story: story, FavoritedAt: m.now().UTC()}
	m.entries[story.ID] = entry
	return entry, nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]domain.FavoriteEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.FavoriteEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[id]
	return ok, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]domain.FavoriteEntry)
	return nil
}

// SetClock replaces the time source used to stamp new entries.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
