package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Emberline-Outdoor/emberline-search-backend/config"
	"github.com/Emberline-Outdoor/emberline-search-backend/models"
)

// RateLimiter is a fixed-window per-IP limiter over Redis for the public
// storefront surface. The surface is GET-only, so the window is keyed per IP
// and route pattern; a bot hammering /store/search does not starve
// /store/pages for the same client.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		endpoint := c.FullPath() // route pattern, e.g. /api/v1/store/pages/:handle

		key := "search_rl:" + ip + ":" + endpoint
		resetKey := key + ":resetAt"

		count, err := config.RedisClient.Incr(config.Ctx, key).Result()
		if err != nil {
			// Fail open: a Redis blip must not take the storefront down.
			c.Next()
			return
		}

		// First request in the window sets the expiry and a stable resetAt.
		if count == 1 {
			config.RedisClient.Expire(config.Ctx, key, window)
			resetAt := time.Now().Add(window)
			config.RedisClient.Set(config.Ctx, resetKey, resetAt.Unix(), window)
		}

		resetAtUnix, _ := config.RedisClient.Get(config.Ctx, resetKey).Int64()
		resetAt := time.Unix(resetAtUnix, 0)

		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		resetInSeconds := int(time.Until(resetAt).Seconds())
		if resetInSeconds < 0 {
			resetInSeconds = 0
		}

		rate := &models.RateLimiter{
			Limit:          maxRequests,
			Remaining:      remaining,
			ResetAt:        resetAt,
			ResetInSeconds: resetInSeconds,
		}

		// Controllers fold this into the response envelope.
		c.Set("rateLimiter", rate)

		if int(count) > maxRequests {
			c.Header("Retry-After", strconv.Itoa(resetInSeconds))
			c.JSON(http.StatusTooManyRequests, models.ApiResponse{
				Message: "Too many requests",
				Error:   true,
				Rate:    rate,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
