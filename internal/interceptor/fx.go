package interceptor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/orgball2608/story-explorer/internal/repositories/responsecache"
	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

const installTimeout = 2 * time.Minute

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
	Store  responsecache.Repository
}

// Agent is the interceptor running as a standalone forward proxy.
type Agent struct {
	Transport *Transport
	Installer *Installer
	Proxy     *Proxy

	server *http.Server
	logger logger.Logger
}

func NewAgent(opts Opts) (*Agent, error) {
	cfg := opts.Config.Interceptor
	log := opts.Logger

	policy, err := NewPolicy(opts.Config.API.BaseURL, cfg.TileHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to build interceptor policy: %w", err)
	}

	network := otelhttp.NewTransport(http.DefaultTransport)
	installer, err := NewInstaller(InstallerParams{
		Client:     &http.Client{Transport: network, Timeout: 30 * time.Second},
		Store:      opts.Store,
		Generation: cfg.Generation,
		AppOrigin:  cfg.AppOrigin,
		Assets:     cfg.CoreAssets,
		Workers:    cfg.InstallWorkers,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	transport := NewTransport(TransportParams{
		Next:        network,
		Store:       opts.Store,
		Policy:      policy,
		Generation:  cfg.Generation,
		FallbackURL: installer.AssetURL(cfg.OfflineFallback).String(),
		Logger:      log,
	})

	proxy, err := NewProxy(transport, cfg.AppOrigin, log)
	if err != nil {
		return nil, fmt.Errorf("failed to parse app origin: %w", err)
	}

	a := &Agent{
		Transport: transport,
		Installer: installer,
		Proxy:     proxy,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           proxy,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log.WithComponent("Agent"),
	}

	opts.LC.Append(fx.Hook{
		OnStart: a.Start,
		OnStop:  a.Stop,
	})
	return a, nil
}

// Start precaches the app shell, retires old generations once that
// succeeded, and begins proxying. A failed install is logged and the
// proxy still serves from the network.
func (a *Agent) Start(ctx context.Context) error {
	installCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), installTimeout)
	defer cancel()

	if err := a.Installer.Install(installCtx); err != nil {
		a.logger.Error("Install failed, keeping previous cache generations", "error", err)
	} else if _, err := a.Installer.Activate(installCtx); err != nil {
		a.logger.Error("Activate failed", "error", err)
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
	}
	a.logger.Info("Interceptor proxy listening", "addr", ln.Addr().String())

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Interceptor proxy stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (a *Agent) Stop(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// NewAPITransport builds the interceptor used in-process by the story API
// client. HTTPS requests to the API cannot pass through the forward proxy,
// so every process that calls the API wraps its own client instead.
func NewAPITransport(opts Opts) (http.RoundTripper, error) {
	policy, err := NewPolicy(opts.Config.API.BaseURL, opts.Config.Interceptor.TileHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to build interceptor policy: %w", err)
	}
	return NewTransport(TransportParams{
		Next:       http.DefaultTransport,
		Store:      opts.Store,
		Policy:     policy,
		Generation: opts.Config.Interceptor.Generation,
		Logger:     opts.Logger,
	}), nil
}

var Module = fx.Options(
	fx.Provide(NewAgent),
	fx.Invoke(func(*Agent) {}),
)

// APIModule provides the transport picked up by the story API client.
var APIModule = fx.Provide(
	fx.Annotate(
		NewAPITransport,
		fx.ResultTags(`name:"storyapi"`),
	),
)
