package handler

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/service"
)

// RateLimitMiddleware limits requests per key. Redis failures let the request through.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		decision, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil && !errors.Is(err, service.ErrRateLimited) {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if err != nil {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			respondError(c, err)
			return
		}

		c.Next()
	}
}

// IPBasedKey keys on the client IP as resolved by gin. Forwarding headers
// only count when the request came through a trusted proxy.
func IPBasedKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}
