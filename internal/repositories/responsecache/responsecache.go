package responsecache

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=responsecache.go -destination=mocks/mock.go

// Repository stores HTTP responses captured by the network interceptor,
// partitioned by cache generation.
type Repository interface {
	// Put writes every entry or none of them. An existing entry with the
	// same generation and key is overwritten.
	Put(ctx context.Context, entries ...domain.CachedResponse) error

	// Get returns the entry stored under generation and key. The bool is
	// false when nothing is stored.
	Get(ctx context.Context, generation, key string) (domain.CachedResponse, bool, error)

	// DeleteOtherGenerations drops every entry not in keep and reports how
	// many rows went away.
	DeleteOtherGenerations(ctx context.Context, keep string) (int64, error)

	Generations(ctx context.Context) ([]string, error)
}
