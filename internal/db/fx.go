package db

import (
	"context"
	"time"

	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.uber.org/fx"
)

const openTimeout = 30 * time.Second

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Logger logger.Logger
	Config *config.Config
}

// NewLocal never fails: an unavailable store is returned with Err set so
// the app keeps running on in-memory collections.
func NewLocal(opts Opts) *LocalDB {
	log := opts.Logger.WithComponent("LocalStore")

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	local, err := OpenLocal(ctx, Options{
		Driver: opts.Config.Store.Driver,
		Path:   opts.Config.Store.Path,
		DSN:    opts.Config.GetDSN(),
	}, log)
	if err != nil {
		log.Error("Local store unavailable, continuing without persistence", "error", err)
		return &LocalDB{Err: err}
	}

	log.Info("Local store opened", "driver", local.Dialect)
	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return local.Close()
		},
	})
	return local
}

func NewCache(opts Opts) (*CacheDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	cache, err := OpenCache(ctx, opts.Config.Interceptor.CachePath)
	if err != nil {
		return nil, err
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})
	return cache, nil
}

var Module = fx.Provide(NewLocal)

var CacheModule = fx.Provide(NewCache)
