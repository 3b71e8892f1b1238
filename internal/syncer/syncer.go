package syncer

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=syncer.go -destination=mocks/mock.go

// Client drains queued story submissions to the remote API.
type Client interface {
	// Sync runs one pass over the queue. Each item is attempted once;
	// delivered items leave the queue, rejected ones stay untouched. The
	// error is only set when the queue could not be read.
	Sync(ctx context.Context) (domain.SyncResult, error)
}
