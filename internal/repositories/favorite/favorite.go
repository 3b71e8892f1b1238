package favorite

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=favorite.go -destination=mocks/mock.go

// Repository holds the user's favorited stories keyed by story ID.
type Repository interface {
	// Add stores story with the current time as its favorite time. A story
	// already present yields ErrDuplicateKey and leaves the stored entry
	// untouched.
	Add(ctx context.Context, story domain.Story) (domain.FavoriteEntry, error)

	// Remove deletes the entry for id. Removing an absent id is not an error.
	Remove(ctx context.Context, id string) error

	// List returns every entry in no particular order.
	List(ctx context.Context) ([]domain.FavoriteEntry, error)

	Exists(ctx context.Context, id string) (bool, error)

	Clear(ctx context.Context) error
}
