package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// UploadRateLimit throttles image uploads separately from the general
// limiter. Authenticated callers are keyed by user ID so a shared NAT at
// a party does not starve everyone; anonymous uploads fall back to the
// client IP.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := context.Background()

		subject := UserID(c)
		if subject == "" {
			subject = c.ClientIP()
		}
		key := fmt.Sprintf("upload_limit:%s", subject)

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			if err := redisClient.Set(ctx, key, 1, cfg.UploadRateLimitDuration).Err(); err != nil {
				// Redis failure never blocks an upload.
				c.Next()
				return
			}
		} else if err != nil {
			c.Next()
			return
		} else if count >= cfg.UploadRateLimitRequests {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":         "upload_rate_limit_exceeded",
				"message":       "Too many uploads. Please wait a moment.",
				"retry_after":   ttl.Seconds(),
				"upload_limit":  cfg.UploadRateLimitRequests,
				"window_period": cfg.UploadRateLimitDuration.String(),
			})
			c.Abort()
			return
		} else {
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}
