package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const keyPrefix = "ratelimit:"

// Middleware rejects a request with 429 when its client IP is over the limit.
// Requests pass through if the limiter itself fails.
func Middleware(limiter RateLimiter, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		wait, err := limiter.ShouldWait(c, keyPrefix+c.ClientIP())
		if err != nil {
			logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
