package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware provides a fixed-window limiter shared by every
// replica through Redis. The window opens on a client's first request: INCR a
// per-client key, set its TTL when the count is 1, and reject once the count
// exceeds floor(rps*windowSeconds)+burst.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	ttl := time.Duration(windowSeconds) * time.Second
	allowedPerWindow := int64(rps*float64(windowSeconds)) + int64(burst)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rl:" + clientKey(c)

		cnt, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Errorf("rate limit: redis incr %s: %v", key, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if cnt == 1 {
			if err := client.Expire(ctx, key, ttl).Err(); err != nil {
				logger.Warnf("rate limit: redis expire %s: %v", key, err)
			}
		}
		if cnt > allowedPerWindow {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
