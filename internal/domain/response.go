package domain

import (
	"net/http"
	"time"
)

// CachedResponse is a stored copy of an HTTP response held by the network
// interceptor under a cache generation.
type CachedResponse struct {
	Generation string
	Key        string
	Status     int
	Header     http.Header
	Body       []byte
	StoredAt   time.Time
}

func (r CachedResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
