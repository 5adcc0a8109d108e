package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nahpet/shortener/internal/model"
)

// RateLimit enforces a fixed-window request limit per client IP, counted
// in Redis so every instance shares the same window. Redis errors fail
// open.
func RateLimit(client *redis.Client, maxRequests int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(maxRequests, 10))
		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))
		}

		if count > maxRequests {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   "rate_limited",
				Message: "too many requests, try again later",
			})
			return
		}

		c.Next()
	}
}
