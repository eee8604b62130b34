package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/response"
)

// RateLimit throttles a route with a fixed one-minute window per client IP,
// counted in Redis. When Redis is down the request is allowed through:
// submission availability beats throttling precision.
func RateLimit(client *redis.Client, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if client == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, time.Minute).Err(); err != nil {
				logger.Warn("rate limit expiry not set", zap.String("key", key), zap.Error(err))
			}
		}
		if count > int64(perMinute) {
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
