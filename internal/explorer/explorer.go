package explorer

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=explorer.go -destination=mocks/mock.go

const MinDescriptionLength = 10

// StoriesPage is what the story list screen renders.
type StoriesPage struct {
	Stories   []domain.Story `json:"stories"`
	FromCache bool           `json:"fromCache"`
}

// SubmitOutcome tells the form whether the story went out now or was
// queued for later delivery.
type SubmitOutcome struct {
	Queued  bool                      `json:"queued"`
	Pending *domain.PendingSubmission `json:"pending,omitempty"`
}

// Service carries out the render layer's intents against the local store,
// the remote API and the sync coordinator.
type Service interface {
	LoadStories(ctx context.Context, token string, location int) (StoriesPage, error)
	SubmitStory(ctx context.Context, draft domain.StoryDraft) (SubmitOutcome, error)

	AddFavorite(ctx context.Context, story domain.Story) (domain.FavoriteEntry, error)
	RemoveFavorite(ctx context.Context, id string) error
	// ToggleFavorite reports whether story is a favorite afterwards.
	ToggleFavorite(ctx context.Context, story domain.Story) (bool, error)
	// ListFavorites returns entries newest favorite first.
	ListFavorites(ctx context.Context) ([]domain.FavoriteEntry, error)
	IsFavorite(ctx context.Context, id string) (bool, error)
	ClearFavorites(ctx context.Context) error

	ListPending(ctx context.Context) ([]domain.PendingSubmission, error)
	ClearPending(ctx context.Context) error
	SyncNow(ctx context.Context) (domain.SyncResult, error)
}
