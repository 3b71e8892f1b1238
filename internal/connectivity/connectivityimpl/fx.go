package connectivityimpl

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/state"
	"github.com/orgball2608/story-explorer/internal/syncer"
	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
	Syncer syncer.Client
	State  *state.Store
}

func New(opts Opts) *MonitorImpl {
	m := NewMonitor(Params{
		Prober:   NewHTTPProber(opts.Config.Connectivity.ProbeURL, opts.Config.Connectivity.Timeout),
		Syncer:   opts.Syncer,
		Notifier: opts.State,
		Logger:   opts.Logger,
		Interval: opts.Config.Connectivity.Interval,
		Timeout:  opts.Config.Connectivity.Timeout,
	})

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Start(ctx)
		},
		OnStop: func(context.Context) error {
			return m.Stop()
		},
	})
	return m
}

var Module = fx.Options(
	fx.Provide(func() *state.Store { return &state.Store{} }),
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(connectivity.Monitor)),
		),
	),
)
