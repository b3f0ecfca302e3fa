// Package ratelimit provides per-key token bucket limiting for outbound
// Last.fm calls and inbound API clients.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key keeps its limiter.
const DefaultIdleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func (b *bucket) touch(now time.Time) {
	b.lastSeen.Store(now.UnixNano())
}

// KeyedRateLimiter holds one token bucket per key.
// Keys unused for longer than the idle TTL are evicted by a background sweep.
type KeyedRateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter allowing rps requests per second per key with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithIdleTTL(rps, burst, DefaultIdleTTL)
}

// NewWithIdleTTL is New with a custom eviction window.
func NewWithIdleTTL(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	if burst < 1 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	rl := &KeyedRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether a request for key may proceed now.
func (rl *KeyedRateLimiter) Allow(key string) bool {
	return rl.get(key).limiter.Allow()
}

// Wait blocks until key has a token or ctx is done.
func (rl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return rl.get(key).limiter.Wait(ctx)
}

// Len returns the number of tracked keys.
func (rl *KeyedRateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.buckets)
}

func (rl *KeyedRateLimiter) get(key string) *bucket {
	now := time.Now()

	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()
	if ok {
		b.touch(now)
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok = rl.buckets[key]; !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.touch(now)
	return b
}

// evictIdle drops buckets not used since before now-idleTTL and returns how many were removed.
func (rl *KeyedRateLimiter) evictIdle(now time.Time) int {
	cutoff := now.Add(-rl.idleTTL).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Load() < cutoff {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

func (rl *KeyedRateLimiter) sweepLoop() {
	interval := rl.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *KeyedRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

// Middleware rejects requests with 429 once the client IP runs out of tokens.
func (rl *KeyedRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the host part of r.RemoteAddr.
// chi's RealIP middleware has already applied X-Forwarded-For when it runs first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
