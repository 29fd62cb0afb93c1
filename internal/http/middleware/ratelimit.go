// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, token-bucket rate limiter
// keyed by client IP, used to throttle form submissions from a single
// origin. It is process-local and intended for abuse control in the
// documented single-process deployment, not as a distributed limit.
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds one bucket and the last time the key was seen, so idle
// buckets can be evicted.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements a per-IP token-bucket rate limiter. Buckets are
// created on demand; idle buckets are evicted opportunistically during
// lookups to keep memory bounded. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

// NewRateLimiter constructs a limiter with the given tokens-per-second and
// burst size. A burst <= 0 is coerced to 1.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the bucket for key, creating it if absent. Eviction of
// idle entries runs before the lookup so a stale bucket for this key is
// replaced rather than refreshed.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= 5000 {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Handler returns the Gin middleware. Requests over the limit are rejected
// with the supplied render function and HTTP 429.
func (rl *RateLimiter) Handler(render func(c *gin.Context, status int)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor("ip:" + c.ClientIP()).Allow() {
			render(c, 429)
			c.Abort()
			return
		}
		c.Next()
	}
}
