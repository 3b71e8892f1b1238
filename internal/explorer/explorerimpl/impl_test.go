package explorerimpl

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	mock_connectivity "github.com/orgball2608/story-explorer/internal/connectivity/mocks"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories/favorite"
	"github.com/orgball2608/story-explorer/internal/repositories/pending"
	"github.com/orgball2608/story-explorer/internal/repositories/storycache"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	mock_storyapi "github.com/orgball2608/story-explorer/internal/storyapi/mocks"
	mock_syncer "github.com/orgball2608/story-explorer/internal/syncer/mocks"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	svc       *ExplorerImpl
	api       *mock_storyapi.MockClient
	syncer    *mock_syncer.MockClient
	monitor   *mock_connectivity.MockMonitor
	favorites *favorite.Memory
	pending   *pending.Memory
	cache     *storycache.Memory
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		api:       mock_storyapi.NewMockClient(ctrl),
		syncer:    mock_syncer.NewMockClient(ctrl),
		monitor:   mock_connectivity.NewMockMonitor(ctrl),
		favorites: favorite.NewMemory(),
		pending:   pending.NewMemory(),
		cache:     storycache.NewMemory(),
	}
	f.svc = New(Opts{
		Favorites:  f.favorites,
		Pending:    f.pending,
		StoryCache: f.cache,
		API:        f.api,
		Syncer:     f.syncer,
		Monitor:    f.monitor,
		Logger:     logger.New(logger.Opts{Env: "test", Writer: io.Discard}),
	})
	f.svc.newKey = func() string { return "key-1" }
	return f
}

func draft() domain.StoryDraft {
	return domain.StoryDraft{
		Description: "Trip to the mountains",
		Photo:       []byte("jpeg"),
		PhotoName:   "trip.jpg",
		Lat:         -6.9,
		Lon:         107.6,
		Token:       "tok",
	}
}

func TestSubmitStory_OfflineQueues(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(false)

	out, err := f.svc.SubmitStory(context.Background(), draft())
	require.NoError(t, err)

	assert.True(t, out.Queued)
	require.NotNil(t, out.Pending)
	items, err := f.pending.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, out.Pending.ID, items[0].ID)
	assert.False(t, items[0].Synced)
	assert.Equal(t, "tok", items[0].Token)
	assert.Equal(t, "key-1", items[0].IdempotencyKey)
	assert.NotEmpty(t, items[0].Payload)
	assert.Contains(t, items[0].ContentType, "multipart/form-data")
}

func TestSubmitStory_OnlineSendsDirectly(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().SubmitStory(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s storyapi.Submission) error {
		assert.Equal(t, "tok", s.Token)
		assert.Equal(t, "key-1", s.IdempotencyKey)
		return nil
	})

	out, err := f.svc.SubmitStory(context.Background(), draft())
	require.NoError(t, err)

	assert.False(t, out.Queued)
	items, _ := f.pending.List(context.Background())
	assert.Empty(t, items)
}

func TestSubmitStory_NetworkFailureFallsBackToQueue(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().SubmitStory(gomock.Any(), gomock.Any()).
		Return(apperrors.NetworkFailure(errors.New("connection reset"), "POST /stories"))

	out, err := f.svc.SubmitStory(context.Background(), draft())
	require.NoError(t, err)

	assert.True(t, out.Queued)
	items, _ := f.pending.List(context.Background())
	assert.Len(t, items, 1)
}

func TestSubmitStory_RejectionIsNotQueued(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().SubmitStory(gomock.Any(), gomock.Any()).
		Return(&apperrors.RemoteRejection{StatusCode: 413, Message: "Payload too large"})

	_, err := f.svc.SubmitStory(context.Background(), draft())

	require.Error(t, err)
	assert.Equal(t, 413, apperrors.RemoteStatus(err))
	items, _ := f.pending.List(context.Background())
	assert.Empty(t, items)
}

func TestSubmitStory_Validation(t *testing.T) {
	f := newFixture(t)

	d := draft()
	d.Description = "  short  "
	d.Photo = nil
	_, err := f.svc.SubmitStory(context.Background(), d)

	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "photo")
}

func TestLoadStories_OnlineRefreshesCache(t *testing.T) {
	f := newFixture(t)
	stories := []domain.Story{{ID: "s1"}, {ID: "s2"}}
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().FetchStories(gomock.Any(), "tok", 1).Return(stories, nil)

	page, err := f.svc.LoadStories(context.Background(), "tok", 1)
	require.NoError(t, err)

	assert.False(t, page.FromCache)
	assert.Equal(t, stories, page.Stories)
	cached, _ := f.cache.List(context.Background())
	assert.Equal(t, stories, domain.StoriesOf(cached))
}

func TestLoadStories_FetchFailureServesCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cache.Replace(context.Background(), []domain.Story{{ID: "old"}}))
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().FetchStories(gomock.Any(), "tok", 1).
		Return(nil, apperrors.NetworkFailure(errors.New("timeout"), "GET /stories"))

	page, err := f.svc.LoadStories(context.Background(), "tok", 1)
	require.NoError(t, err)

	assert.True(t, page.FromCache)
	assert.Equal(t, "old", page.Stories[0].ID)
}

func TestLoadStories_FetchFailureWithEmptyCache(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(true)
	f.api.EXPECT().FetchStories(gomock.Any(), "tok", 1).
		Return(nil, apperrors.NetworkFailure(errors.New("timeout"), "GET /stories"))

	_, err := f.svc.LoadStories(context.Background(), "tok", 1)

	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkFailure(err))
}

func TestLoadStories_OfflineReadsCache(t *testing.T) {
	f := newFixture(t)
	f.monitor.EXPECT().Online().Return(false)

	page, err := f.svc.LoadStories(context.Background(), "tok", 1)
	require.NoError(t, err)

	assert.True(t, page.FromCache)
	assert.Empty(t, page.Stories)
}

func TestFavorites_RoundTripLeavesCollectionUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddFavorite(ctx, domain.Story{ID: "keep"})
	require.NoError(t, err)
	before, err := f.svc.ListFavorites(ctx)
	require.NoError(t, err)

	_, err = f.svc.AddFavorite(ctx, domain.Story{ID: "s1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveFavorite(ctx, "s1"))

	after, err := f.svc.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFavorites_Toggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	on, err := f.svc.ToggleFavorite(ctx, domain.Story{ID: "s1"})
	require.NoError(t, err)
	assert.True(t, on)

	ok, err := f.svc.IsFavorite(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	on, err = f.svc.ToggleFavorite(ctx, domain.Story{ID: "s1"})
	require.NoError(t, err)
	assert.False(t, on)
}

func TestFavorites_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		f.favorites.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Hour) })
		_, err := f.svc.AddFavorite(ctx, domain.Story{ID: id})
		require.NoError(t, err)
	}

	entries, err := f.svc.ListFavorites(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestFavorites_DuplicateAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddFavorite(ctx, domain.Story{ID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.AddFavorite(ctx, domain.Story{ID: "s1"})
	assert.True(t, apperrors.IsDuplicateKey(err))
}

func TestSyncNow(t *testing.T) {
	f := newFixture(t)
	f.syncer.EXPECT().Sync(gomock.Any()).Return(domain.SyncResult{Succeeded: 3}, nil)

	result, err := f.svc.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded)
}
