package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// RefuseFunc writes the response for a throttled request.
type RefuseFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// Middleware limits requests per client IP. Throttled requests get a
// Retry-After header and are passed to refuse; a nil refuse writes a plain
// 429. A nil limiter passes everything through.
func Middleware(limiter *Limiter, refuse RefuseFunc) func(http.Handler) http.Handler {
	if refuse == nil {
		refuse = func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			ok, retryAfter := limiter.Allow(ClientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(RetrySeconds(retryAfter)))
			refuse(w, r, retryAfter)
		})
	}
}

// RetrySeconds rounds d up to whole seconds, with a minimum of one.
func RetrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
