package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mock_connectivity "github.com/orgball2608/story-explorer/internal/connectivity/mocks"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/explorer"
	mock_explorer "github.com/orgball2608/story-explorer/internal/explorer/mocks"
	"github.com/orgball2608/story-explorer/internal/ratelimit"
	"github.com/orgball2608/story-explorer/internal/state"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	handler  http.Handler
	explorer *mock_explorer.MockService
	monitor  *mock_connectivity.MockMonitor
	state    *state.Store
}

func newFixture(t *testing.T, limiter ratelimit.Limiter) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		explorer: mock_explorer.NewMockService(ctrl),
		monitor:  mock_connectivity.NewMockMonitor(ctrl),
		state:    &state.Store{},
	}
	if limiter == nil {
		limiter = ratelimit.NewInMemoryLimiter(100, 1, 100)
	}
	s := New(Params{
		Explorer: f.explorer,
		Monitor:  f.monitor,
		State:    f.state,
		Limiter:  limiter,
		Logger:   logger.New(logger.Opts{Env: "test", Writer: io.Discard}),
	})
	f.handler = s.Handler()
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, rec.Body.String())
}

func TestListStories(t *testing.T) {
	f := newFixture(t, nil)
	f.explorer.EXPECT().LoadStories(gomock.Any(), "tok", 1).
		Return(explorer.StoriesPage{Stories: []domain.Story{{ID: "s1"}}, FromCache: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stories?location=1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page explorer.StoriesPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.True(t, page.FromCache)
	assert.Equal(t, "s1", page.Stories[0].ID)
}

func TestListStories_BadLocation(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/stories?location=x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartStory(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		part, err := w.CreateFormFile("photo", "trip.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitStory_Queued(t *testing.T) {
	f := newFixture(t, nil)
	f.explorer.EXPECT().SubmitStory(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, d domain.StoryDraft) (explorer.SubmitOutcome, error) {
			assert.Equal(t, "Trip to Bandung", d.Description)
			assert.Equal(t, []byte("jpeg"), d.Photo)
			assert.Equal(t, "trip.jpg", d.PhotoName)
			assert.InDelta(t, -6.9, d.Lat, 1e-9)
			assert.InDelta(t, 107.6, d.Lon, 1e-9)
			assert.Equal(t, "tok", d.Token)
			return explorer.SubmitOutcome{Queued: true}, nil
		})

	body, ct := multipartStory(t, map[string]string{
		"description": "Trip to Bandung", "lat": "-6.9", "lon": "107.6",
	}, []byte("jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/stories", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer tok")
	rec := f.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"queued":true}`, rec.Body.String())
}

func TestSubmitStory_MissingLocation(t *testing.T) {
	f := newFixture(t, nil)

	body, ct := multipartStory(t, map[string]string{"description": "Trip to Bandung"}, []byte("jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/stories", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddFavorite_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	f.explorer.EXPECT().AddFavorite(gomock.Any(), domain.Story{ID: "s1", Name: "Dimas"}).
		Return(domain.FavoriteEntry{}, apperrors.WrapWithCode(apperrors.ErrDuplicateKey, "duplicate_key", "story s1 is already a favorite"))

	req := httptest.NewRequest(http.MethodPut, "/api/favorites/s1", strings.NewReader(`{"id":"other","name":"Dimas"}`))
	rec := f.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":true,"message":"story s1 is already a favorite"}`, rec.Body.String())
}

func TestFavoriteEndpoints(t *testing.T) {
	f := newFixture(t, nil)
	f.explorer.EXPECT().IsFavorite(gomock.Any(), "s1").Return(true, nil)
	f.explorer.EXPECT().RemoveFavorite(gomock.Any(), "s1").Return(nil)
	f.explorer.EXPECT().ToggleFavorite(gomock.Any(), domain.Story{ID: "s2"}).Return(true, nil)
	f.explorer.EXPECT().ClearFavorites(gomock.Any()).Return(nil)
	f.explorer.EXPECT().ListFavorites(gomock.Any()).Return([]domain.FavoriteEntry{}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/favorites/s1", nil))
	assert.JSONEq(t, `{"favorite":true}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/favorites/s1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/favorites/toggle", strings.NewReader(`{"id":"s2"}`)))
	assert.JSONEq(t, `{"favorite":true}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/favorites", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/favorites", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPendingHidesSecrets(t *testing.T) {
	f := newFixture(t, nil)
	f.explorer.EXPECT().ListPending(gomock.Any()).Return([]domain.PendingSubmission{{
		ID: 1, Description: "Trip", Token: "secret", Payload: []byte("p"), Photo: []byte("jpeg"),
	}}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/pending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), `"synced":false`)
}

func TestSyncNow_RateLimited(t *testing.T) {
	f := newFixture(t, ratelimit.NewInMemoryLimiter(1, 3600e9, 1))
	f.explorer.EXPECT().SyncNow(gomock.Any()).Return(domain.SyncResult{Succeeded: 1, Failed: 1}, nil).Times(1)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"succeeded":1,"failed":1}`, rec.Body.String())
	assert.Equal(t, "Sync completed: 1 sent, 1 failed", f.state.Snapshot().SyncSummary)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestObserveConnectivity(t *testing.T) {
	f := newFixture(t, nil)
	f.monitor.EXPECT().Observe(gomock.Any(), false).Do(func(context.Context, bool) {
		f.state.Offline()
	})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/connectivity", strings.NewReader(`{"online":false}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap state.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.Online)
	assert.Equal(t, state.OfflineNotice, snap.OfflineNotice)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/connectivity", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.ErrDuplicateKey, http.StatusConflict},
		{apperrors.NetworkFailure(errors.New("refused"), "GET"), http.StatusBadGateway},
		{apperrors.StorageUnavailable(errors.New("locked"), "open"), http.StatusServiceUnavailable},
		{&apperrors.RemoteRejection{StatusCode: 401}, http.StatusUnauthorized},
		{invalid("bad"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusOf(c.err), c.err.Error())
	}
}
