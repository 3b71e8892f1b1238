package interceptor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories/responsecache"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	HeaderCache   = "X-Cache"
	CacheHit      = "HIT"
	CacheMiss     = "MISS"
	CacheFallback = "FALLBACK"
)

// Transport applies the caching policy to each request before handing it
// to the next RoundTripper.
type Transport struct {
	next       http.RoundTripper
	store      responsecache.Repository
	policy     Policy
	generation string
	fallback   string
	logger     logger.Logger

	group singleflight.Group
	now   func() time.Time
}

type TransportParams struct {
	Next       http.RoundTripper
	Store      responsecache.Repository
	Policy     Policy
	Generation string
	// FallbackURL is the absolute URL of the stored offline page.
	FallbackURL string
	Logger      logger.Logger
}

func NewTransport(p TransportParams) *Transport {
	next := p.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{
		next:       next,
		store:      p.Store,
		policy:     p.Policy,
		generation: p.Generation,
		fallback:   "GET " + p.FallbackURL,
		logger:     p.Logger.WithComponent("Interceptor"),
		now:        time.Now,
	}
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.policy.Classify(req) {
	case NetworkFirst:
		return t.networkFirst(req)
	case CacheFirst:
		return t.cacheFirst(req, false)
	case CacheFirstWithFallback:
		return t.cacheFirst(req, true)
	default:
		return t.next.RoundTrip(req)
	}
}

func (t *Transport) networkFirst(req *http.Request) (*http.Response, error) {
	key := RequestKey(req.Method, req.URL)

	captured, err := t.fetch(req)
	if err == nil {
		if captured.OK() {
			t.put(req.Context(), captured)
		}
		return t.respond(req, captured, CacheMiss), nil
	}

	if cached, ok := t.lookup(req.Context(), key); ok {
		t.logger.Debug("Network failed, replaying stored response", "key", key)
		return t.respond(req, cached, CacheHit), nil
	}
	return nil, err
}

func (t *Transport) cacheFirst(req *http.Request, withFallback bool) (*http.Response, error) {
	key := RequestKey(req.Method, req.URL)
	if cached, ok := t.lookup(req.Context(), key); ok {
		return t.respond(req, cached, CacheHit), nil
	}

	// The fetch is shared by every caller waiting on key, so it must not
	// end when the first caller goes away.
	shared := req.Clone(context.WithoutCancel(req.Context()))
	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		captured, err := t.fetch(shared)
		if err != nil {
			return nil, err
		}
		if captured.OK() {
			t.put(req.Context(), captured)
		}
		return captured, nil
	})
	if err == nil {
		return t.respond(req, v.(domain.CachedResponse), CacheMiss), nil
	}

	if withFallback {
		if page, ok := t.lookup(req.Context(), t.fallback); ok {
			t.logger.Debug("Network failed, serving offline page", "key", key)
			return t.respond(req, page, CacheFallback), nil
		}
	}
	return nil, err
}

// fetch performs the request and buffers the whole response.
func (t *Transport) fetch(req *http.Request) (domain.CachedResponse, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return domain.CachedResponse{}, apperrors.NetworkFailure(err, fmt.Sprintf("%s %s", req.Method, req.URL.Redacted()))
	}
	return capture(req, resp, t.generation, t.now())
}

// capture drains and closes resp into a storable entry.
func capture(req *http.Request, resp *http.Response, generation string, storedAt time.Time) (domain.CachedResponse, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CachedResponse{}, apperrors.NetworkFailure(err, fmt.Sprintf("read %s", req.URL.Redacted()))
	}
	return domain.CachedResponse{
		Generation: generation,
		Key:        RequestKey(req.Method, req.URL),
		Status:     resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		StoredAt:   storedAt,
	}, nil
}

func (t *Transport) lookup(ctx context.Context, key string) (domain.CachedResponse, bool) {
	cached, ok, err := t.store.Get(ctx, t.generation, key)
	if err != nil {
		t.logger.Error("Failed to read response store", "key", key, "error", err)
		return domain.CachedResponse{}, false
	}
	return cached, ok
}

func (t *Transport) put(ctx context.Context, r domain.CachedResponse) {
	if err := t.store.Put(context.WithoutCancel(ctx), r); err != nil {
		t.logger.Error("Failed to store response", "key", r.Key, "error", err)
	}
}

func (t *Transport) respond(req *http.Request, r domain.CachedResponse, source string) *http.Response {
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(HeaderCache, source)
	header.Set("Content-Length", strconv.Itoa(len(r.Body)))
	header.Del("Transfer-Encoding")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
