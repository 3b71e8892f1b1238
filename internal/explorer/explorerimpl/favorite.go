package explorerimpl

import (
	"context"
	"sort"

	"github.com/orgball2608/story-explorer/internal/domain"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
)

func (e *ExplorerImpl) AddFavorite(ctx context.Context, story domain.Story) (domain.FavoriteEntry, error) {
	if story.ID == "" {
		return domain.FavoriteEntry{}, apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_input", "story id is required")
	}
	return e.favorites.Add(ctx, story)
}

func (e *ExplorerImpl) RemoveFavorite(ctx context.Context, id string) error {
	return e.favorites.Remove(ctx, id)
}

func (e *ExplorerImpl) ToggleFavorite(ctx context.Context, story domain.Story) (bool, error) {
	exists, err := e.favorites.Exists(ctx, story.ID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := e.favorites.Remove(ctx, story.ID); err != nil {
			return true, err
		}
		return false, nil
	}

	if _, err := e.AddFavorite(ctx, story); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (e *ExplorerImpl) ListFavorites(ctx context.Context) ([]domain.FavoriteEntry, error) {
	entries, err := e.favorites.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FavoritedAt.After(entries[j].FavoritedAt)
	})
	return entries, nil
}

func (e *ExplorerImpl) IsFavorite(ctx context.Context, id string) (bool, error) {
	return e.favorites.Exists(ctx, id)
}

func (e *ExplorerImpl) ClearFavorites(ctx context.Context) error {
	return e.favorites.Clear(ctx)
}
