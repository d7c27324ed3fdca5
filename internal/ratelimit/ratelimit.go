// Package ratelimit provides a keyed token-bucket rate limiter. Each key
// (typically a client IP) gets an independent limiter; idle entries are
// evicted in the background so the map does not grow without bound.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry pairs a limiter with its last access time for eviction.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed rate limiter.
// rps: requests per second allowed per key.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		maxIdle: 10 * time.Minute,
		done:    make(chan struct{}),
	}

	go krl.cleanupLoop()

	return krl
}

// PerMinute creates a limiter allowing n requests per key per minute, with a
// burst of n.
func PerMinute(n int) *KeyedRateLimiter {
	return New(float64(n)/60.0, n)
}

// Allow reports whether a request for the given key should proceed.
// Returns immediately without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	krl.mu.Lock()
	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = time.Now()
	krl.mu.Unlock()

	return e.limiter.Allow()
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// cleanupLoop evicts entries not seen within maxIdle.
func (krl *KeyedRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-krl.maxIdle)
			krl.mu.Lock()
			for key, e := range krl.entries {
				if e.lastSeen.Before(cutoff) {
					delete(krl.entries, key)
				}
			}
			krl.mu.Unlock()
		}
	}
}
