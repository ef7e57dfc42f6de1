// Package ratelimit implements a Redis sorted-set sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

type SlidingWindowLimiter struct {
	redis redis.UniversalClient
	name  string
	limit RateLimit
	now   func() time.Time
}

func NewSlidingWindowLimiter(client redis.UniversalClient, name string, limit RateLimit) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis: client,
		name:  name,
		limit: limit,
		now:   time.Now,
	}
}

func (l *SlidingWindowLimiter) key(identifier string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.name, identifier)
}

// Allow records an attempt for identifier and reports whether it is within the
// limit. Rejected attempts are recorded too, so a client hammering the
// endpoint stays blocked until it backs off for a full window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := l.key(identifier)
	now := l.now().UnixNano()
	windowStart := now - l.limit.Window.Nanoseconds()

	pipe := l.redis.TxPipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	card := pipe.ZCard(ctx, key)

	// members must be unique or concurrent attempts collapse into one
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: strconv.FormatInt(now, 10) + "-" + uuid.NewString()})

	pipe.Expire(ctx, key, l.limit.Window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	return card.Val() < int64(l.limit.MaxRequests), nil
}

// Reset forgets every attempt recorded for identifier.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, identifier string) error {
	return l.redis.Del(ctx, l.key(identifier)).Err()
}
