package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/fadilmartias/jobmarket/internal/util"
)

// RateLimiter limits requests per actor (falling back to client IP when no
// actor header is present) over a sliding window.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	if max == 0 {
		max = 50
	}
	if expiration == 0 {
		expiration = 1 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := c.Get(HeaderActorID); id != "" {
				return "actor:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(util.OrderedErrorResponse{
				Success: false,
				Message: "too many requests",
				Code:    "RATE_LIMITED",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
