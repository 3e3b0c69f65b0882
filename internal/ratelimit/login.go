// Package ratelimit throttles failed logins per user name in Redis so every
// API instance shares the same counters.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "termine:login_failures:"

type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter returns nil for a nil client; a nil limiter allows
// everything.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if client == nil {
		return nil
	}
	return &LoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func key(userName string) string {
	return keyPrefix + userName
}

// Blocked reports whether userName used up its failed attempts for the
// current window.
func (l *LoginLimiter) Blocked(ctx context.Context, userName string) (bool, error) {
	if l == nil {
		return false, nil
	}

	n, err := l.client.Get(ctx, key(userName)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login failures: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// Fail counts a failed attempt. The window starts with the first failure.
func (l *LoginLimiter) Fail(ctx context.Context, userName string) error {
	if l == nil {
		return nil
	}

	n, err := l.client.Incr(ctx, key(userName)).Result()
	if err != nil {
		return fmt.Errorf("count login failure: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key(userName), l.window).Err(); err != nil {
			return fmt.Errorf("expire login failures: %w", err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, userName string) error {
	if l == nil {
		return nil
	}
	if err := l.client.Del(ctx, key(userName)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
