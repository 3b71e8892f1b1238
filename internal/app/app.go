package app

import (
	"context"

	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/connectivity/connectivityimpl"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/explorer/explorerimpl"
	"github.com/orgball2608/story-explorer/internal/interceptor"
	repositories "github.com/orgball2608/story-explorer/internal/repositories/fx"
	"github.com/orgball2608/story-explorer/internal/server"
	"github.com/orgball2608/story-explorer/internal/storyapi/storyapiimpl"
	"github.com/orgball2608/story-explorer/internal/syncer/syncerimpl"
	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/orgball2608/story-explorer/pkg/otel"
	"go.uber.org/fx"
)

// Core is everything needed to read and write the local store and talk
// to the remote API.
var Core = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
	),
	fx.Invoke(startTelemetry),
	db.Module,
	repositories.Module,
	storyapiimpl.Module,
	syncerimpl.Module,
)

// Intercepted routes the story API client through the network
// interceptor, backed by the process's own handle on the response store.
var Intercepted = fx.Options(
	db.CacheModule,
	repositories.ResponseModule,
	interceptor.APIModule,
)

// App serves the explorer over HTTP and syncs on reconnect.
var App = fx.Options(
	Core,
	Intercepted,
	connectivityimpl.Module,
	explorerimpl.Module,
	server.Module,
)

// Agent runs the interceptor as a caching forward proxy.
var Agent = fx.Options(
	Core,
	Intercepted,
	interceptor.Module,
)

// BackgroundSync runs a connectivity monitor beside the proxy so queued
// stories are delivered while the app itself is closed.
var BackgroundSync = fx.Options(
	connectivityimpl.Module,
	fx.Invoke(func(connectivity.Monitor) {}),
)

func startTelemetry(lc fx.Lifecycle, cfg *config.Config, log logger.Logger) error {
	if !cfg.Telemetry.Enabled {
		return nil
	}
	shutdown, err := otel.Init(context.Background(), otel.Config{
		Environment: cfg.App.Env,
		UseStdout:   cfg.Telemetry.Stdout,
	})
	if err != nil {
		return err
	}
	log.Info("Tracing enabled", "stdout", cfg.Telemetry.Stdout)
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}
