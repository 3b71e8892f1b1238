package connectivityimpl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/syncer"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const syncTimeout = 5 * time.Minute

type MonitorImpl struct {
	prober   connectivity.Prober
	syncer   syncer.Client
	notifier connectivity.Notifier
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	known  bool
	online bool

	schedMu   sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

type Params struct {
	Prober   connectivity.Prober
	Syncer   syncer.Client
	Notifier connectivity.Notifier
	Logger   logger.Logger
	Interval time.Duration
	Timeout  time.Duration
}

func NewMonitor(p Params) *MonitorImpl {
	return &MonitorImpl{
		prober:   p.Prober,
		syncer:   p.Syncer,
		notifier: p.Notifier,
		logger:   p.Logger.WithComponent("Connectivity"),
		interval: p.Interval,
		timeout:  p.Timeout,
	}
}

var _ connectivity.Monitor = (*MonitorImpl)(nil)

// Start schedules the first probe to run right away and, with a positive
// interval, every interval after that. It returns without waiting for the
// first probe or the sync pass it may trigger.
func (m *MonitorImpl) Start(ctx context.Context) error {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()

	if m.scheduler != nil {
		return fmt.Errorf("connectivity monitor already started")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create connectivity scheduler: %w", err)
	}

	var definition gocron.JobDefinition = gocron.OneTimeJob(gocron.OneTimeJobStartImmediately())
	options := []gocron.JobOption{gocron.WithSingletonMode(gocron.LimitModeReschedule)}
	if m.interval > 0 {
		definition = gocron.DurationJob(m.interval)
		options = append(options, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	_, err = scheduler.NewJob(
		definition,
		gocron.NewTask(func() {
			if runCtx.Err() != nil {
				return
			}
			m.Observe(runCtx, m.probe(runCtx))
		}),
		options...,
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule connectivity probe: %w", err)
	}

	scheduler.Start()
	m.scheduler = scheduler
	m.cancel = cancel
	if m.interval > 0 {
		m.logger.Info("Connectivity probe scheduled", "interval", m.interval.String())
	}
	return nil
}

func (m *MonitorImpl) Stop() error {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()

	if m.scheduler == nil {
		return nil
	}
	m.cancel()
	err := m.scheduler.Shutdown()
	m.scheduler = nil
	m.cancel = nil
	if err != nil {
		return fmt.Errorf("failed to shut down connectivity scheduler: %w", err)
	}
	return nil
}

func (m *MonitorImpl) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.known && m.online
}

func (m *MonitorImpl) Observe(ctx context.Context, online bool) {
	m.mu.Lock()
	first := !m.known
	changed := first || m.online != online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}

	if !online {
		m.logger.Warn("Connection lost, working offline")
		m.notifier.Offline()
		return
	}

	if first {
		m.logger.Info("Online, draining pending stories")
	} else {
		m.logger.Info("Back online, syncing pending stories")
	}
	m.notifier.Online()
	m.runSync(ctx)
}

func (m *MonitorImpl) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	result, err := m.syncer.Sync(syncCtx)
	if err != nil {
		m.logger.Error("Sync pass failed", "error", err)
	} else if result.Total() > 0 {
		m.logger.Info("Sync pass reported", "succeeded", result.Succeeded, "failed", result.Failed)
	}
	m.notifier.SyncCompleted(result, err)
}

func (m *MonitorImpl) probe(ctx context.Context) bool {
	probeCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.prober.Probe(probeCtx)
}
