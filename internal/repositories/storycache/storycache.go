package storycache

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=storycache.go -destination=mocks/mock.go

// Repository holds the last successfully fetched story list.
type Repository interface {
	// Replace swaps the whole snapshot for stories in one step. Readers
	// see either the previous snapshot or the new one, never a mix.
	Replace(ctx context.Context, stories []domain.Story) error

	// List returns the snapshot in the order it was written.
	List(ctx context.Context) ([]domain.CachedStory, error)
}
