package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	limiter := NewMemoryLimiter(time.Second, clock)
	ctx := context.Background()

	if !limiter.Allow(ctx, "user|doc") {
		t.Fatalf("first hit should be allowed")
	}
	if limiter.Allow(ctx, "user|doc") {
		t.Fatalf("second hit inside window should be rejected")
	}
	if !limiter.Allow(ctx, "user|other") {
		t.Fatalf("different key should be allowed")
	}

	now = now.Add(1100 * time.Millisecond)
	if !limiter.Allow(ctx, "user|doc") {
		t.Fatalf("hit after window should be allowed")
	}
}

func TestMemoryLimiterRetryAfter(t *testing.T) {
	limiter := NewMemoryLimiter(3*time.Second, nil)
	if got := limiter.RetryAfterSeconds(); got != 3 {
		t.Fatalf("RetryAfterSeconds = %d, want 3", got)
	}
	var nilLimiter *MemoryLimiter
	if got := nilLimiter.RetryAfterSeconds(); got != 1 {
		t.Fatalf("nil RetryAfterSeconds = %d, want 1", got)
	}
	if !nilLimiter.Allow(context.Background(), "k") {
		t.Fatalf("nil limiter should always allow")
	}
}

func TestRedisLimiterWindow(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	limiter, err := NewRedisLimiter(ctx, "redis://"+srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("NewRedisLimiter: %v", err)
	}
	defer limiter.Close()

	if !limiter.Allow(ctx, "user|doc") {
		t.Fatalf("first hit should be allowed")
	}
	if limiter.Allow(ctx, "user|doc") {
		t.Fatalf("second hit inside window should be rejected")
	}
	if !limiter.Allow(ctx, "user|other") {
		t.Fatalf("different key should be allowed")
	}

	srv.FastForward(1100 * time.Millisecond)
	if !limiter.Allow(ctx, "user|doc") {
		t.Fatalf("hit after window should be allowed")
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	limiter, err := NewRedisLimiter(ctx, "redis://"+srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("NewRedisLimiter: %v", err)
	}
	defer limiter.Close()

	srv.Close()
	if !limiter.Allow(ctx, "user|doc") {
		t.Fatalf("limiter should fail open when redis is unreachable")
	}
}

func TestNewRedisLimiterRejectsEmptyURL(t *testing.T) {
	if _, err := NewRedisLimiter(context.Background(), "  ", time.Second); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
