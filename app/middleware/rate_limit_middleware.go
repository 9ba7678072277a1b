package middleware

import (
	"context"
	"time"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/services"
	"github.com/gofiber/fiber/v3"
)

// RateLimitMiddleware applies the domain sliding-window limiter to selected
// routes. The client IP is the actor; authenticated admin routes sit behind
// the coarse per-IP fiber limiter as well.
type RateLimitMiddleware struct {
	limiter services.RateLimiter
}

func NewRateLimitMiddleware(limiter services.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit guards one named operation. Rejections answer 429 with retry_after
// and consume no quota.
func (m *RateLimitMiddleware) Limit(operation string) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		info, err := m.limiter.Allow(ctx, operation, c.IP())
		if err != nil {
			// The limiter fails open internally; an error here is a
			// programming fault, not a backend outage. Let the request pass.
			return c.Next()
		}
		if !info.Allowed {
			RecordRateLimitRejection(operation)
			retryAfter := info.RetryAfterSeconds
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Rate limit exceeded",
				Error: dto.ErrorDetail{
					Code:       "RATE_LIMIT_EXCEEDED",
					RetryAfter: &retryAfter,
				},
			})
		}
		return c.Next()
	}
}
