// Package state keeps the connectivity and sync snapshot the render layer
// shows to the user.
package state

import (
	"sync"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/pkg/formatter"
)

const OfflineNotice = "You are offline. New stories will be sent when you are back online."

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Online        bool               `json:"online"`
	Known         bool               `json:"known"`
	OfflineNotice string             `json:"offlineNotice,omitempty"`
	LastSync      *domain.SyncResult `json:"lastSync,omitempty"`
	LastSyncAt    time.Time          `json:"lastSyncAt,omitempty"`
	LastSyncError string             `json:"lastSyncError,omitempty"`
	SyncSummary   string             `json:"syncSummary,omitempty"`
	LastChanged   time.Time          `json:"lastChanged,omitempty"`
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func (s *Store) Offline() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Online = false
	s.snapshot.Known = true
	s.snapshot.OfflineNotice = OfflineNotice
	s.snapshot.LastChanged = time.Now()
}

func (s *Store) Online() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Online = true
	s.snapshot.Known = true
	s.snapshot.OfflineNotice = ""
	s.snapshot.LastChanged = time.Now()
}

// SyncCompleted records the outcome of a sync pass. When err is non-nil
// the previous counts are kept but the error is recorded.
func (s *Store) SyncCompleted(result domain.SyncResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastSyncAt = time.Now()
	if err != nil {
		s.snapshot.LastSyncError = err.Error()
		return
	}
	r := result
	s.snapshot.LastSync = &r
	s.snapshot.LastSyncError = ""
	s.snapshot.SyncSummary = formatter.SyncSummary(result)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastSync != nil {
		r := *s.snapshot.LastSync
		snap.LastSync = &r
	}
	return snap
}
