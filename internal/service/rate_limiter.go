package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prperemyshlev/storyboard-api/pkg/database"
)

// ErrRateLimited is returned by Allow once a key has used up its window
var ErrRateLimited = errors.New("rate limit exceeded")

// RateDecision describes the state of a key after a call to Allow
type RateDecision struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter implements a sliding window log on Redis sorted sets
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a hit for key. It returns ErrRateLimited, together with a
// populated decision, when limit hits already happened inside window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error) {
	now := r.now()
	redisKey := "ratelimit:" + key
	decision := RateDecision{Limit: limit}

	windowStart := now.Add(-window).UnixNano()
	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart, 10)).Err(); err != nil {
		return decision, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return decision, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		decision.RetryAfter = window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			decision.RetryAfter = time.Unix(0, int64(oldest[0].Score)).Add(window).Sub(now)
		}
		return decision, ErrRateLimited
	}

	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + strconv.FormatInt(count, 10),
	}).Err()
	if err != nil {
		return decision, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err(); err != nil {
		return decision, fmt.Errorf("failed to set expiry: %w", err)
	}

	decision.Remaining = limit - int(count) - 1
	return decision, nil
}
