package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestClientLimiter_Refill(t *testing.T) {
	clock, advance := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewClientLimiter(2)
	l.now = clock
	l.lastSweep = clock()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	advance(500 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	advance(time.Hour)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst is capped at rps")
}

func TestClientLimiter_IsolatesClients(t *testing.T) {
	clock, _ := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewClientLimiter(1)
	l.now = clock
	l.lastSweep = clock()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "a second client has its own bucket")
	assert.Equal(t, 2, l.Clients())
}

func TestClientLimiter_EvictsIdleBuckets(t *testing.T) {
	clock, advance := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewClientLimiter(5)
	l.now = clock
	l.lastSweep = clock()

	for _, client := range []string{"a", "b", "c"} {
		l.Allow(client)
	}
	assert.Equal(t, 3, l.Clients())

	advance(bucketIdleTTL)
	assert.True(t, l.Allow("d"))
	assert.Equal(t, 1, l.Clients())
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		trust      bool
		want       string
	}{
		{name: "peer host", remoteAddr: "192.0.2.7:51234", want: "192.0.2.7"},
		{name: "ipv6 peer", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "no port", remoteAddr: "192.0.2.7", want: "192.0.2.7"},
		{name: "forwarded ignored by default", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.9", want: "10.0.0.1"},
		{name: "forwarded trusted", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.9, 10.0.0.1", trust: true, want: "203.0.113.9"},
		{name: "empty forwarded falls back", remoteAddr: "10.0.0.1:80", forwarded: " ", trust: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/predict", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientKey(r, tt.trust))
		})
	}
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	h := RateLimitMiddleware(NewClientLimiter(1), false)(okHandler)

	send := func(remoteAddr, path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1:1000", "/predict").Code)

	rec := send("198.51.100.1:1001", "/predict")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, send("198.51.100.2:1000", "/predict").Code, "other clients are unaffected")
	assert.Equal(t, http.StatusOK, send("198.51.100.1:1002", "/healthz").Code, "probes bypass the limiter")
}
