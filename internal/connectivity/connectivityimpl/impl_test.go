package connectivityimpl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	mock_connectivity "github.com/orgball2608/story-explorer/internal/connectivity/mocks"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/state"
	mock_syncer "github.com/orgball2608/story-explorer/internal/syncer/mocks"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	)
}

func testLogger() logger.Logger {
	return logger.New(logger.Opts{Env: "test", Writer: io.Discard})
}

type fixedProber struct{ online atomic.Bool }

func (p *fixedProber) Probe(context.Context) bool { return p.online.Load() }

func TestStart_OfflineShowsNoticeWithoutSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	notes := &state.Store{}

	m := NewMonitor(Params{
		Prober:   &fixedProber{},
		Syncer:   syncer,
		Notifier: notes,
		Logger:   testLogger(),
	})
	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return notes.Snapshot().Known }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop())

	assert.False(t, m.Online())
	assert.Equal(t, state.OfflineNotice, notes.Snapshot().OfflineNotice)
}

func TestStart_OnlineRunsOneSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	syncer.EXPECT().Sync(gomock.Any()).Return(domain.SyncResult{Succeeded: 2}, nil).Times(1)
	notes := &state.Store{}

	p := &fixedProber{}
	p.online.Store(true)
	m := NewMonitor(Params{Prober: p, Syncer: syncer, Notifier: notes, Logger: testLogger()})

	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return notes.Snapshot().LastSync != nil }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop())

	assert.True(t, m.Online())
	assert.Equal(t, 2, notes.Snapshot().LastSync.Succeeded)
}

func TestStart_DoesNotWaitForFirstSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	entered := make(chan struct{})
	release := make(chan struct{})
	syncer.EXPECT().Sync(gomock.Any()).DoAndReturn(func(context.Context) (domain.SyncResult, error) {
		close(entered)
		<-release
		return domain.SyncResult{Succeeded: 1}, nil
	})
	notes := &state.Store{}

	p := &fixedProber{}
	p.online.Store(true)
	m := NewMonitor(Params{Prober: p, Syncer: syncer, Notifier: notes, Logger: testLogger(), Interval: time.Hour})

	started := make(chan error, 1)
	go func() { started <- m.Start(context.Background()) }()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("Start blocked on the first sync pass")
	}

	<-entered
	assert.Nil(t, notes.Snapshot().LastSync)
	close(release)

	require.Eventually(t, func() bool { return notes.Snapshot().LastSync != nil }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop())
}

func TestObserve_TransitionsOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	notifier := mock_connectivity.NewMockNotifier(ctrl)

	gomock.InOrder(
		notifier.EXPECT().Offline(),
		notifier.EXPECT().Online(),
		syncer.EXPECT().Sync(gomock.Any()).Return(domain.SyncResult{Succeeded: 1, Failed: 1}, nil),
		notifier.EXPECT().SyncCompleted(domain.SyncResult{Succeeded: 1, Failed: 1}, nil),
		notifier.EXPECT().Offline(),
	)

	m := NewMonitor(Params{Prober: &fixedProber{}, Syncer: syncer, Notifier: notifier, Logger: testLogger()})
	ctx := context.Background()

	m.Observe(ctx, false)
	m.Observe(ctx, false)
	m.Observe(ctx, true)
	m.Observe(ctx, true)
	m.Observe(ctx, false)
}

func TestObserve_SyncErrorIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	notes := &state.Store{}
	syncer.EXPECT().Sync(gomock.Any()).Return(domain.SyncResult{}, errors.New("store closed"))

	m := NewMonitor(Params{Prober: &fixedProber{}, Syncer: syncer, Notifier: notes, Logger: testLogger()})
	m.Observe(context.Background(), false)
	m.Observe(context.Background(), true)

	assert.Equal(t, "store closed", notes.Snapshot().LastSyncError)
}

func TestStart_ProbesOnInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := mock_syncer.NewMockClient(ctrl)
	synced := make(chan struct{}, 1)
	syncer.EXPECT().Sync(gomock.Any()).DoAndReturn(func(context.Context) (domain.SyncResult, error) {
		synced <- struct{}{}
		return domain.SyncResult{}, nil
	}).Times(1)

	p := &fixedProber{}
	notes := &state.Store{}
	m := NewMonitor(Params{
		Prober:   p,
		Syncer:   syncer,
		Notifier: notes,
		Logger:   testLogger(),
		Interval: 20 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.NoError(t, m.Start(context.Background()))
	require.Eventually(t, func() bool { return notes.Snapshot().Known }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, m.Online())

	p.online.Store(true)
	select {
	case <-synced:
	case <-time.After(2 * time.Second):
		t.Fatal("probe job never observed the device coming online")
	}

	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())
	assert.True(t, m.Online())
}

func TestStart_Twice(t *testing.T) {
	m := NewMonitor(Params{
		Prober:   &fixedProber{},
		Notifier: &state.Store{},
		Logger:   testLogger(),
		Interval: time.Hour,
	})
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop() })

	assert.Error(t, m.Start(context.Background()))
}

func TestHTTPProber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))

	p := NewHTTPProber(server.URL, time.Second)
	assert.True(t, p.Probe(context.Background()), "any HTTP answer counts as online")

	server.Close()
	assert.False(t, p.Probe(context.Background()))
	p.client.CloseIdleConnections()
}
