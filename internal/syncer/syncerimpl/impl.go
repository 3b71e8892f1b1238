package syncerimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories/pending"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	"github.com/orgball2608/story-explorer/internal/syncer"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.uber.org/fx"
)

type SyncImpl struct {
	pending pending.Repository
	api     storyapi.Client
	logger  logger.Logger
}

type Opts struct {
	fx.In

	Pending pending.Repository
	API     storyapi.Client
	Logger  logger.Logger
}

func New(opts Opts) *SyncImpl {
	return &SyncImpl{
		pending: opts.Pending,
		api:     opts.API,
		logger:  opts.Logger.WithComponent("Syncer"),
	}
}

var _ syncer.Client = (*SyncImpl)(nil)

func (s *SyncImpl) Sync(ctx context.Context) (domain.SyncResult, error) {
	items, err := s.pending.List(ctx)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	var result domain.SyncResult
	if len(items) == 0 {
		return result, nil
	}

	s.logger.Info("Sync pass started", "pending", len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			remaining := len(items) - result.Total()
			result.Failed += remaining
			s.logger.Warn("Sync pass cancelled", "error", err, "remaining", remaining)
			break
		}

		if err := s.api.SubmitStory(ctx, storyapi.SubmissionOf(item)); err != nil {
			result.Failed++
			failure := &apperrors.SyncItemFailure{SubmissionID: item.ID, Err: err}
			s.logger.Warn("Failed to deliver pending story",
				"id", item.ID,
				"status", apperrors.RemoteStatus(err),
				"network", apperrors.IsNetworkFailure(err),
				"error", failure,
			)
			continue
		}

		result.Succeeded++
		if err := s.pending.Remove(ctx, item.ID); err != nil {
			s.logger.Error("Delivered story could not be removed from queue",
				"id", item.ID,
				"idempotency_key", item.IdempotencyKey,
				"error", err,
			)
		}
	}

	s.logger.Info("Sync pass finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}
