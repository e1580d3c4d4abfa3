package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleClientAge is how long an idle client entry survives before a sweep
// drops it.
const staleClientAge = 10 * time.Minute

// RateLimiter enforces a per-client token bucket, keyed by the remote
// address chi's RealIP middleware resolved.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateLimitedClient
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

type rateLimitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per client address.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*rateLimitedClient),
		limit:     rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Limit rejects requests above the per-client rate with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweep(now)

	c, ok := rl.clients[addr]
	if !ok {
		c = &rateLimitedClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[addr] = c
	}
	c.lastSeen = now

	return c.limiter.Allow()
}

// sweep drops entries for clients not seen within staleClientAge. Caller
// holds the lock.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < staleClientAge {
		return
	}

	for addr, c := range rl.clients {
		if now.Sub(c.lastSeen) > staleClientAge {
			delete(rl.clients, addr)
		}
	}
	rl.lastSweep = now
}
