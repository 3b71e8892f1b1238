package interceptor

import (
	"net/http"
	"net/url"
	"strings"
)

// Strategy is how a request is served relative to the response store.
type Strategy int

const (
	// Passthrough goes to the network and is never stored.
	Passthrough Strategy = iota
	// NetworkFirst prefers the network and replays the stored copy when
	// the network fails.
	NetworkFirst
	// CacheFirst serves the stored copy and fetches only on a miss.
	CacheFirst
	// CacheFirstWithFallback is CacheFirst that answers an uncached
	// request with the offline page when the network fails.
	CacheFirstWithFallback
)

func (s Strategy) String() string {
	switch s {
	case NetworkFirst:
		return "network-first"
	case CacheFirst:
		return "cache-first"
	case CacheFirstWithFallback:
		return "cache-first-fallback"
	default:
		return "passthrough"
	}
}

// Policy maps request origins to strategies.
type Policy struct {
	// APIOrigin is scheme://host[:port] of the remote story API.
	APIOrigin string
	// TileHosts are host suffixes served cache-first.
	TileHosts []string
}

func NewPolicy(apiBaseURL string, tileHosts []string) (Policy, error) {
	u, err := url.Parse(apiBaseURL)
	if err != nil {
		return Policy{}, err
	}
	hosts := make([]string, 0, len(tileHosts))
	for _, h := range tileHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return Policy{APIOrigin: origin(u), TileHosts: hosts}, nil
}

func (p Policy) Classify(req *http.Request) Strategy {
	if req.Method != http.MethodGet {
		return Passthrough
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return Passthrough
	}
	if origin(req.URL) == p.APIOrigin {
		return NetworkFirst
	}
	host := strings.ToLower(req.URL.Hostname())
	for _, suffix := range p.TileHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return CacheFirst
		}
	}
	return CacheFirstWithFallback
}

func origin(u *url.URL) string {
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// RequestKey identifies a stored response. Fragments never reach the
// network so they are not part of the key. A request line parsed by a
// server leaves any '#' in the path or the raw query, so both are cut.
func RequestKey(method string, u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	if i := strings.IndexByte(c.Path, '#'); i >= 0 {
		c.Path = c.Path[:i]
		c.RawPath = ""
		c.RawQuery = ""
		c.ForceQuery = false
	} else if i := strings.IndexByte(c.RawQuery, '#'); i >= 0 {
		c.RawQuery = c.RawQuery[:i]
	}
	return method + " " + c.String()
}
