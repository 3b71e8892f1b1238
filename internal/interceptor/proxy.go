package interceptor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy forwards requests through a Transport. Absolute-form requests go
// to their own origin; origin-form requests are resolved against the app.
type Proxy struct {
	transport http.RoundTripper
	appOrigin *url.URL
	logger    logger.Logger
}

func NewProxy(transport http.RoundTripper, appOrigin string, log logger.Logger) (*Proxy, error) {
	u, err := url.Parse(appOrigin)
	if err != nil {
		return nil, err
	}
	return &Proxy{
		transport: transport,
		appOrigin: u,
		logger:    log.WithComponent("Proxy"),
	}, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		http.Error(w, "CONNECT tunnelling is not supported", http.StatusMethodNotAllowed)
		return
	}

	target := r.URL
	if !target.IsAbs() {
		target = p.appOrigin.ResolveReference(&url.URL{
			Path:     r.URL.Path,
			RawPath:  r.URL.RawPath,
			RawQuery: r.URL.RawQuery,
		})
	}

	out := r.Clone(r.Context())
	out.URL = target
	out.Host = target.Host
	out.RequestURI = ""
	removeHopHeaders(out.Header)
	if r.ContentLength == 0 {
		out.Body = nil
	}

	resp, err := p.transport.RoundTrip(out)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		p.logger.Warn("Upstream request failed", "method", r.Method, "url", target.Redacted(),
			"network", apperrors.IsNetworkFailure(err), "error", err)
		http.Error(w, "upstream unavailable", status)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	removeHopHeaders(resp.Header)
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		p.logger.Debug("Client went away mid-response", "url", target.Redacted(), "error", err)
	}
}

func removeHopHeaders(h http.Header) {
	if c := h.Get("Connection"); c != "" {
		for _, f := range strings.Split(c, ",") {
			if f = strings.TrimSpace(f); f != "" {
				h.Del(f)
			}
		}
	}
	for _, k := range hopHeaders {
		h.Del(k)
	}
}
