package interceptor

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/orgball2608/story-explorer/internal/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_ResolvesOriginFormAgainstApp(t *testing.T) {
	app := appServer()
	defer app.Close()

	net := &switchable{}
	tr := newTransport(t, newStore(t), net, "https://story-api.dicoding.dev/v1", nil, app.URL+"/")
	p, err := NewProxy(tr, app.URL, dbtest.Logger())
	require.NoError(t, err)

	front := httptest.NewServer(p)
	defer front.Close()

	resp, err := http.Get(front.URL + "/app.bundle.js")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, CacheMiss, resp.Header.Get(HeaderCache))
	assert.Equal(t, "console.log(1)", string(body))

	net.offline.Store(true)
	resp, err = http.Get(front.URL + "/app.bundle.js")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, CacheHit, resp.Header.Get(HeaderCache))

	resp, err = http.Get(front.URL + "/never-seen")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestProxy_ForwardsAbsoluteForm(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	defer api.Close()

	tr := newTransport(t, newStore(t), &switchable{}, api.URL, nil, "")
	p, err := NewProxy(tr, "http://localhost:8080", dbtest.Logger())
	require.NoError(t, err)

	front := httptest.NewServer(p)
	defer front.Close()

	proxyURL, err := url.Parse(front.URL)
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}

	resp, err := client.Get(api.URL + "/v1/stories")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "/v1/stories", string(body))
	assert.Equal(t, CacheMiss, resp.Header.Get(HeaderCache))
}

func TestProxy_RefusesConnect(t *testing.T) {
	p, err := NewProxy(&switchable{}, "http://localhost:8080", dbtest.Logger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodConnect, "http://example.com:443", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRemoveHopHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "keep-alive, X-Session")
	h.Set("X-Session", "abc")
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Proxy-Authorization", "Basic Zm9v")
	h.Set("Authorization", "Bearer t")

	removeHopHeaders(h)

	assert.Empty(t, h.Get("Connection"))
	assert.Empty(t, h.Get("X-Session"))
	assert.Empty(t, h.Get("Keep-Alive"))
	assert.Empty(t, h.Get("Proxy-Authorization"))
	assert.Equal(t, "Bearer t", h.Get("Authorization"))
}
