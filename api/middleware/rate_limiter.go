package middleware

import (
	"fmt"
	"movie_api/configs"
	"movie_api/pkg/response"
	"movie_api/util"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewRateLimiter tracks a fixed window per caller, keyed by user id for
// authenticated requests and by ip otherwise. Counters live in the given
// storage so limits hold across instances.
func NewRateLimiter(storage fiber.Storage) fiber.Handler {
	conf := configs.GetConfigs()
	return limiter.New(limiter.Config{
		Max:        conf.RateLimitRequests,
		Expiration: time.Duration(conf.RateLimitWindowSec) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			accessToken := bearerToken(c)
			if accessToken != "" {
				if _, claims, err := util.VerifyToken(accessToken); err == nil && claims != nil {
					return fmt.Sprintf("user:%d", claims.UserId)
				}
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.ResponseError(c, fiber.StatusTooManyRequests, response.CodeTooManyRequests, response.RateLimitReached, nil)
		},
		Storage: storage,
	})
}
