package connectivity

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=connectivity.go -destination=mocks/mock.go

// Prober answers whether the remote API is reachable right now.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Notifier receives user-facing connectivity events.
type Notifier interface {
	Offline()
	Online()
	SyncCompleted(result domain.SyncResult, err error)
}

// Monitor tracks online/offline transitions and drains the pending queue
// whenever the device comes back online.
type Monitor interface {
	// Start checks connectivity in the background right away, acts on the
	// result and keeps probing until Stop. It does not block on the first
	// check.
	Start(ctx context.Context) error

	// Observe feeds a platform connectivity signal. Only transitions act:
	// offline to online runs one sync pass, online to offline raises the
	// offline notice.
	Observe(ctx context.Context, online bool)

	Online() bool

	Stop() error
}
