// Package ratelimit throttles requests per client with token buckets.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for Config fields left zero.
const (
	DefaultRate     = 1.0
	DefaultBurst    = 10
	DefaultEntryTTL = 10 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	Rate     float64       // tokens per second
	Burst    int           // bucket capacity
	EntryTTL time.Duration // idle time after which a client's bucket is dropped
	Now      func() time.Time
}

type entry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Limiter keeps one token bucket per client key. Idle buckets are pruned
// while serving, so no background goroutine is needed.
type Limiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	now       func() time.Time
	lastPrune time.Time
}

// New returns a Limiter. Zero fields take the package defaults.
func New(cfg Config) *Limiter {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = DefaultEntryTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Limiter{
		entries:   make(map[string]*entry),
		rate:      rate.Limit(cfg.Rate),
		burst:     cfg.Burst,
		ttl:       cfg.EntryTTL,
		now:       cfg.Now,
		lastPrune: cfg.Now(),
	}
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int {
	return l.burst
}

// Allow takes a token for key. When none is left it reports how long the
// client should wait before retrying.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastPrune) >= l.ttl {
		l.prune(now)
	}
	e, exists := l.entries[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	l.mu.Unlock()

	if e.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := e.limiter.ReserveN(now, 1)
	retryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return false, retryAfter
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// prune drops idle buckets. Callers hold l.mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.ttl)
	for key, e := range l.entries {
		if e.seen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
	l.lastPrune = now
}

// ClientIP returns the remote address of r without its port. Forwarding
// headers are ignored.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
