package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiter_Allow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)}
	l := New(Config{Rate: 1, Burst: 2, Now: clock.now})

	ok, _ := l.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)

	ok, retry := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, time.Second, retry, float64(10*time.Millisecond))

	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok, "clients have separate buckets")

	clock.advance(time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok, "bucket refills over time")
}

func TestLimiter_Prune(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)}
	l := New(Config{EntryTTL: time.Minute, Now: clock.now})

	l.Allow("a")
	l.Allow("b")
	require.Equal(t, 2, l.Len())

	clock.advance(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestNew_Defaults(t *testing.T) {
	l := New(Config{})
	assert.Equal(t, DefaultBurst, l.Burst())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:51234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.7", ClientIP(r))

	r.RemoteAddr = "192.0.2.8"
	assert.Equal(t, "192.0.2.8", ClientIP(r))
}

func TestRetrySeconds(t *testing.T) {
	assert.Equal(t, 1, RetrySeconds(0))
	assert.Equal(t, 1, RetrySeconds(300*time.Millisecond))
	assert.Equal(t, 3, RetrySeconds(2100*time.Millisecond))
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("refuses over the limit", func(t *testing.T) {
		var refused time.Duration
		h := Middleware(New(Config{Rate: 0.5, Burst: 1}), func(w http.ResponseWriter, _ *http.Request, d time.Duration) {
			refused = d
			w.WriteHeader(http.StatusTooManyRequests)
		})(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
		assert.Positive(t, refused)
	})

	t.Run("default refusal", func(t *testing.T) {
		h := Middleware(New(Config{Burst: 1}), nil)(ok)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("nil limiter", func(t *testing.T) {
		h := Middleware(nil, nil)(ok)
		for range 5 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)
		}
	})
}
