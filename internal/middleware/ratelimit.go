package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a per-user sliding window kept in redis sorted sets.
type RateLimiter struct {
	client *redis.Client
	log    *slog.Logger
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, log *slog.Logger) *RateLimiter {
	return &RateLimiter{client: client, log: log, now: time.Now}
}

// Allow records one request against key and reports whether it fits in
// limit requests per window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()
	windowStart := now.Add(-window).UnixMicro()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return card.Val() < int64(limit), nil
}

// Limit rejects a user's requests to one route group beyond limit per
// window. A redis failure lets the request through.
func (r *RateLimiter) Limit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%v", scope, userID)
		allowed, err := r.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			r.log.Error("rate limit check failed", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", limit, window),
			})
			return
		}
		c.Next()
	}
}
