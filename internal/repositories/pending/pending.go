package pending

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=pending.go -destination=mocks/mock.go

// Repository is the outbox of story submissions waiting for connectivity.
type Repository interface {
	// Add assigns a fresh ID, stamps the queue time and marks the item
	// unsynced. IDs are never reused.
	Add(ctx context.Context, submission domain.PendingSubmission) (domain.PendingSubmission, error)

	// List returns every queued submission in ascending ID order.
	List(ctx context.Context) ([]domain.PendingSubmission, error)

	Remove(ctx context.Context, id int64) error

	Clear(ctx context.Context) error
}
