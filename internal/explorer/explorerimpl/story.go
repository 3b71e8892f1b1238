package explorerimpl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/explorer"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
)

func newIdempotencyKey() string {
	return uuid.NewString()
}

// LoadStories fetches the live list while online and refreshes the cache.
// Offline, or when the fetch fails, the cached snapshot is served instead.
func (e *ExplorerImpl) LoadStories(ctx context.Context, token string, location int) (explorer.StoriesPage, error) {
	if e.monitor.Online() {
		stories, err := e.api.FetchStories(ctx, token, location)
		if err == nil {
			if err := e.storyCache.Replace(ctx, stories); err != nil {
				e.logger.Error("Failed to refresh story cache", "error", err)
			}
			return explorer.StoriesPage{Stories: stories}, nil
		}
		e.logger.Warn("Failed to fetch stories, serving cache", "error", err)

		cached, cacheErr := e.storyCache.List(ctx)
		if cacheErr != nil || len(cached) == 0 {
			return explorer.StoriesPage{}, err
		}
		return explorer.StoriesPage{Stories: domain.StoriesOf(cached), FromCache: true}, nil
	}

	cached, err := e.storyCache.List(ctx)
	if err != nil {
		return explorer.StoriesPage{}, fmt.Errorf("failed to read story cache: %w", err)
	}
	return explorer.StoriesPage{Stories: domain.StoriesOf(cached), FromCache: true}, nil
}

// SubmitStory posts draft directly while online. Offline, or when the
// network drops mid-request, the encoded draft is queued for the sync
// coordinator instead.
func (e *ExplorerImpl) SubmitStory(ctx context.Context, draft domain.StoryDraft) (explorer.SubmitOutcome, error) {
	draft.Description = strings.TrimSpace(draft.Description)
	if err := validate(draft); err != nil {
		return explorer.SubmitOutcome{}, err
	}

	body, contentType, err := storyapi.EncodeStory(draft)
	if err != nil {
		return explorer.SubmitOutcome{}, err
	}

	item := domain.PendingSubmission{
		IdempotencyKey: e.newKey(),
		Description:    draft.Description,
		Photo:          draft.Photo,
		PhotoName:      draft.PhotoName,
		Lat:            draft.Lat,
		Lon:            draft.Lon,
		Token:          draft.Token,
		Payload:        body,
		ContentType:    contentType,
	}

	if e.monitor.Online() {
		err := e.api.SubmitStory(ctx, storyapi.SubmissionOf(item))
		if err == nil {
			e.logger.Info("Story submitted", "idempotency_key", item.IdempotencyKey)
			return explorer.SubmitOutcome{}, nil
		}
		if !apperrors.IsNetworkFailure(err) {
			return explorer.SubmitOutcome{}, err
		}
		e.logger.Warn("Network failed during submit, queueing story", "error", err)
	}

	queued, err := e.pending.Add(ctx, item)
	if err != nil {
		return explorer.SubmitOutcome{}, fmt.Errorf("failed to queue story: %w", err)
	}
	e.logger.Info("Story queued for sync", "id", queued.ID)
	return explorer.SubmitOutcome{Queued: true, Pending: &queued}, nil
}

func (e *ExplorerImpl) ListPending(ctx context.Context) ([]domain.PendingSubmission, error) {
	return e.pending.List(ctx)
}

func (e *ExplorerImpl) ClearPending(ctx context.Context) error {
	return e.pending.Clear(ctx)
}

// SyncNow runs a manual sync pass regardless of the connectivity state.
func (e *ExplorerImpl) SyncNow(ctx context.Context) (domain.SyncResult, error) {
	return e.syncer.Sync(ctx)
}

func validate(d domain.StoryDraft) error {
	var problems []string
	if len([]rune(d.Description)) < explorer.MinDescriptionLength {
		problems = append(problems, fmt.Sprintf("description must be at least %d characters", explorer.MinDescriptionLength))
	}
	if len(d.Photo) == 0 {
		problems = append(problems, "photo is required")
	}
	if d.Lat < -90 || d.Lat > 90 || d.Lon < -180 || d.Lon > 180 {
		problems = append(problems, "location is out of range")
	}
	if len(problems) > 0 {
		return apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_input", strings.Join(problems, "; "))
	}
	return nil
}
