package storyapiimpl

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orgball2608/story-explorer/internal/storyapi"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, 2*time.Second, logger.New(logger.Opts{Env: "test", Writer: io.Discard}))
	require.NoError(t, err)
	return c
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("https://story-api.dicoding.dev/v1?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://story-api.dicoding.dev/v1/", u.String())

	_, err = parseBaseURL("")
	assert.Error(t, err)
	_, err = parseBaseURL("ftp://example.com")
	assert.Error(t, err)
}

func TestClient_FetchStories(t *testing.T) {
	var gotAuth, gotLocation, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLocation = r.URL.Query().Get("location")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"error":false,"message":"Stories fetched successfully","listStory":[
			{"id":"story-1","name":"Dimas","description":"Trip","photoUrl":"https://x/1.jpg","createdAt":"2022-01-08T06:34:18.598Z","lat":-10.212,"lon":-16.002},
			{"id":"story-2","name":"Ayu","description":"No location","photoUrl":"https://x/2.jpg","createdAt":"2022-01-09T06:34:18.598Z","lat":null,"lon":null}
		]}`)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL+"/v1")
	stories, err := c.FetchStories(context.Background(), "tok", 1)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "1", gotLocation)
	assert.Equal(t, "/v1/stories", gotPath)
	require.Len(t, stories, 2)
	assert.Equal(t, "story-1", stories[0].ID)
	assert.InDelta(t, -10.212, stories[0].Lat, 1e-9)
	assert.Equal(t, 2022, stories[0].CreatedAt.Year())
	assert.Zero(t, stories[1].Lat)
}

func TestClient_SubmitStory(t *testing.T) {
	var gotBody, gotContentType, gotKey, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
		gotKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"error":false,"message":"success"}`)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	err := c.SubmitStory(context.Background(), storyapi.Submission{
		Body:           []byte("payload"),
		ContentType:    "multipart/form-data; boundary=abc",
		Token:          "tok",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "payload", gotBody)
	assert.Equal(t, "multipart/form-data; boundary=abc", gotContentType)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_RemoteRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":true,"message":"Missing authentication"}`)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	err := c.SubmitStory(context.Background(), storyapi.Submission{Body: []byte("x")})

	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteRejection(err))
	assert.False(t, apperrors.IsNetworkFailure(err))
	assert.Equal(t, http.StatusUnauthorized, apperrors.RemoteStatus(err))
	assert.Contains(t, err.Error(), "Missing authentication")
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	_, err := c.FetchStories(context.Background(), "tok", 1)

	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkFailure(err))
	assert.False(t, apperrors.IsRemoteRejection(err))
}
