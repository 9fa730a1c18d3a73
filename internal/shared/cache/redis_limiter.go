package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter enforces the poll window across multiple API instances.
// A key is allowed once per window; later hits are rejected until the
// Redis entry expires.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	prefix string
}

// NewRedisLimiter connects to the Redis at redisURL and verifies connectivity.
func NewRedisLimiter(ctx context.Context, redisURL string, window time.Duration) (*RedisLimiter, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if window <= 0 {
		window = defaultLimitWindow
	}
	return &RedisLimiter{client: client, window: window, prefix: "poll:"}, nil
}

// Allow reserves the key for one window via SET NX. Redis errors fail open
// so a cache outage does not take status polling down with it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	ok, err := l.client.SetNX(ctx, l.prefix+key, 1, l.window).Result()
	if err != nil {
		return true
	}
	return ok
}

func (l *RedisLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(defaultLimitWindow.Seconds())
	}
	return int(l.window.Seconds())
}

// Close releases the underlying Redis connection pool.
func (l *RedisLimiter) Close() error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Close()
}

var _ Limiter = (*RedisLimiter)(nil)
