package interceptor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/story-explorer/internal/db/dbtest"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	"github.com/orgball2608/story-explorer/internal/storyapi/storyapiimpl"
	"github.com/orgball2608/story-explorer/pkg/config"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_ReplaysHTTPSStoriesWhenOffline(t *testing.T) {
	var fetches atomic.Int32
	api := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/stories":
			fetches.Add(1)
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"error":false,"message":"ok","listStory":[
				{"id":"story-1","name":"Ann","description":"Sunset at the pier","photoUrl":"https://x/1.jpg","createdAt":"2024-01-01T00:00:00Z","lat":-6.2,"lon":106.8}
			]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/stories":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"error":false,"message":"Story created successfully"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	net := &switchable{next: api.Client().Transport}
	store := newStore(t)
	tr := newTransport(t, store, net, api.URL+"/v1", nil, "")

	client, err := storyapiimpl.NewClientWithTransport(api.URL+"/v1", 2*time.Second, tr, dbtest.Logger())
	require.NoError(t, err)
	ctx := context.Background()

	online, err := client.FetchStories(ctx, "token-1", 1)
	require.NoError(t, err)
	require.Len(t, online, 1)

	_, ok, err := store.Get(ctx, gen, "GET "+api.URL+"/v1/stories?location=1")
	require.NoError(t, err)
	assert.True(t, ok, "API reads are written through to the response store")

	net.offline.Store(true)
	offline, err := client.FetchStories(ctx, "token-1", 1)
	require.NoError(t, err)
	assert.Equal(t, online, offline)
	assert.Equal(t, int32(1), fetches.Load())

	err = client.SubmitStory(ctx, storyapi.Submission{Body: []byte("x"), ContentType: "text/plain", Token: "token-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkFailure(err), "writes are never answered from the store")
}

func TestNewAPITransport_ClassifiesAPIAsNetworkFirst(t *testing.T) {
	cfg := &config.Config{}
	cfg.API.BaseURL = "https://story-api.dicoding.dev/v1"
	cfg.Interceptor.Generation = gen
	cfg.Interceptor.TileHosts = []string{"maptiler.com"}

	rt, err := NewAPITransport(Opts{Config: cfg, Logger: dbtest.Logger(), Store: newStore(t)})
	require.NoError(t, err)

	tr, ok := rt.(*Transport)
	require.True(t, ok)
	req := httptest.NewRequest(http.MethodGet, "https://story-api.dicoding.dev/v1/stories?location=1", nil)
	assert.Equal(t, NetworkFirst, tr.policy.Classify(req))
}
