package security

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// OTPRateLimit caps challenge requests per client IP per minute so the
// OTP dispatch channel cannot be used to spam phones.
func (r *RateLimiter) OTPRateLimit(perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:otp:%s", c.RealIP())

			count, err := r.redis.Incr(ctx, key).Result()
			if err != nil {
				// Fail open: an unreachable limiter must not take the
				// login path down with it.
				slog.Warn("otp rate limit check failed", "key", key, "error", err)
				return next(c)
			}

			if count == 1 {
				r.redis.Expire(ctx, key, time.Minute)
			}
			if count > int64(perMinute) {
				return c.JSON(429, map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
