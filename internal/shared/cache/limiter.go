package cache

import (
	"context"
	"sync"
	"time"
)

const defaultLimitWindow = 1 * time.Second

// Limiter throttles repeated hits on the same key within a fixed window.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	RetryAfterSeconds() int
}

// MemoryLimiter is a per-process limiter suitable for single-instance
// deployments and tests.
type MemoryLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

// NewMemoryLimiter builds an in-process limiter. A nil now func defaults to
// time.Now; a non-positive window defaults to one second.
func NewMemoryLimiter(window time.Duration, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = defaultLimitWindow
	}
	return &MemoryLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.lastHit[key] = now
	// Drop stale entries opportunistically so the map does not grow without bound.
	if len(l.lastHit) > 4096 {
		for k, v := range l.lastHit {
			if now.Sub(v) >= l.window {
				delete(l.lastHit, k)
			}
		}
	}
	return true
}

func (l *MemoryLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(defaultLimitWindow.Seconds())
	}
	return int(l.window.Seconds())
}

var _ Limiter = (*MemoryLimiter)(nil)
