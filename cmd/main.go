package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/story-explorer/internal/app"
	"github.com/orgball2608/story-explorer/internal/syncer"
	"github.com/orgball2608/story-explorer/pkg/config"
	"github.com/orgball2608/story-explorer/pkg/formatter"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const syncTimeout = 5 * time.Minute

var rootCmd = &cobra.Command{
	Use:   "story-explorer",
	Short: "Offline-capable story explorer",
	Long: `Story Explorer serves the story list, favorites and the offline
submission queue, and keeps them in step with the remote story API.

Without a subcommand the app server is started.`,
	SilenceUsage: true,
	RunE:         runApp,
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Run the app server and connectivity monitor",
	RunE:  runApp,
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the caching interceptor proxy",
	Long: `Run the network interceptor as a forward proxy. The app shell is
precached on start, API reads are served network-first and map tiles
cache-first. With INTERCEPTOR_BACKGROUND_SYNC set, queued stories are
delivered whenever connectivity returns.`,
	RunE: runAgent,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deliver queued stories once and print the result",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(appCmd, agentCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*logger.Impl, *config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	return logger.New(logger.Opts{Env: cfg.App.Env, SentryDSN: cfg.App.SentryUrl}), cfg, nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	log, _, err := newLogger()
	if err != nil {
		return err
	}
	return serve(log, app.App)
}

func runAgent(cmd *cobra.Command, _ []string) error {
	log, cfg, err := newLogger()
	if err != nil {
		return err
	}
	opts := []fx.Option{app.Agent}
	if cfg.Interceptor.BackgroundSync {
		opts = append(opts, app.BackgroundSync)
	}
	return serve(log, opts...)
}

func runSync(cmd *cobra.Command, _ []string) error {
	log, _, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Flush()

	var client syncer.Client
	fxApp := fx.New(
		fx.Logger(log),
		app.Core,
		app.Intercepted,
		fx.Populate(&client),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
	defer cancel()

	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := fxApp.Stop(context.Background()); err != nil {
			log.Error("Failed to stop application", "error", err)
		}
	}()

	result, err := client.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.SyncSummary(result))
	return nil
}

func serve(log *logger.Impl, opts ...fx.Option) error {
	defer log.Flush()

	fxApp := fx.New(append([]fx.Option{fx.Logger(log)}, opts...)...)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := fxApp.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		return err
	}
	return nil
}
