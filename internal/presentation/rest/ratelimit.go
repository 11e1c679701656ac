package rest

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucketIdleTTL is how long an untouched client limiter is kept. A limiter
// refills completely within a second, so dropping it after this loses nothing.
const bucketIdleTTL = time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client. Each client may burst up
// to rps requests and refills at rps tokens per second.
type ClientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	rps       int
	lastSweep time.Time
	now       func() time.Time
}

// NewClientLimiter creates a limiter allowing rps requests per second per client.
func NewClientLimiter(rps int) *ClientLimiter {
	return &ClientLimiter{
		buckets:   make(map[string]*clientBucket),
		rps:       rps,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether client may make one more request, consuming a token
// if so.
func (l *ClientLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= bucketIdleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps)}
		l.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *ClientLimiter) sweep(now time.Time) {
	for client, b := range l.buckets {
		if now.Sub(b.lastSeen) >= bucketIdleTTL {
			delete(l.buckets, client)
		}
	}
	l.lastSweep = now
}

// Clients returns the number of tracked client buckets.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// ClientKey identifies the caller by the host part of RemoteAddr. When
// trustForwarded is set, the first X-Forwarded-For entry wins; only enable it
// behind a proxy that overwrites the header.
func ClientKey(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware answers 429 once the calling client's bucket is empty.
// Probe and metrics paths are never limited.
func RateLimitMiddleware(limiter *ClientLimiter, trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !exemptFromLimit(r.URL.Path) && !limiter.Allow(ClientKey(r, trustForwarded)) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func exemptFromLimit(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}
