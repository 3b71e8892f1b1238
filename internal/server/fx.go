package server

import (
	"context"
	"fmt"

	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/explorer"
	"github.com/orgball2608/story-explorer/internal/ratelimit"
	"github.com/orgball2608/story-explorer/internal/state"
	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config   *config.Config
	Logger   logger.Logger
	Explorer explorer.Service
	Monitor  connectivity.Monitor
	State    *state.Store
	Local    *db.LocalDB
}

func NewFx(opts Opts) *Server {
	s := New(Params{
		Explorer: opts.Explorer,
		Monitor:  opts.Monitor,
		State:    opts.State,
		Local:    opts.Local,
		Limiter:  ratelimit.NewInMemoryLimiter(1, opts.Config.Sync.TriggerEvery, opts.Config.Sync.TriggerBurst),
		Logger:   opts.Logger,
		Addr:     fmt.Sprintf(":%d", opts.Config.App.Port),
	})

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
	return s
}

var Module = fx.Options(
	fx.Provide(NewFx),
	fx.Invoke(func(*Server) {}),
)
