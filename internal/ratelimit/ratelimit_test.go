package ratelimit

import (
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("test") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	// Exhaust key1.
	rl.Allow("key1")
	if rl.Allow("key1") {
		t.Error("key1 should be exhausted")
	}

	// key2 should still work.
	if !rl.Allow("key2") {
		t.Error("key2 should be independent and allowed")
	}
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(5)
	defer rl.Stop()

	passed := 0
	for i := 0; i < 10; i++ {
		if rl.Allow("ip") {
			passed++
		}
	}
	if passed != 5 {
		t.Errorf("PerMinute(5) passed %d requests, want 5", passed)
	}
}

func TestKeyedRateLimiter_Eviction(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()
	rl.maxIdle = 10 * time.Millisecond

	rl.Allow("stale")
	time.Sleep(20 * time.Millisecond)

	// Evict directly rather than waiting out the cleanup ticker.
	cutoff := time.Now().Add(-rl.maxIdle)
	rl.mu.Lock()
	for key, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
	remaining := len(rl.entries)
	rl.mu.Unlock()

	if remaining != 0 {
		t.Errorf("expected stale entry evicted, %d entries remain", remaining)
	}

	// A fresh bucket after eviction allows again.
	if !rl.Allow("stale") {
		t.Error("expected new bucket after eviction")
	}
}
