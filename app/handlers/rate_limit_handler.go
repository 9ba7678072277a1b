package handlers

import (
	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// RateLimitHandlerInterface defines the contract for the limiter probe endpoint
type RateLimitHandlerInterface interface {
	Check(c fiber.Ctx) error
}

type RateLimitHandler struct {
	limiter   services.RateLimiter
	validator *validator.Validate
}

func NewRateLimitHandler(limiter services.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{
		limiter:   limiter,
		validator: validator.New(),
	}
}

// Check consumes one unit of quota for the operation on behalf of the actor.
// An exhausted window answers 429 with retry_after; rejections consume
// nothing.
func (h *RateLimitHandler) Check(c fiber.Ctx) error {
	var req dto.CheckRateLimitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	info, err := h.limiter.Allow(createRequestContext(c, "/api/v1/rate-limit/check"), req.Operation, req.Actor)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to check rate limit", "RATE_LIMIT_CHECK_FAILED", nil)
	}

	if !info.Allowed {
		retryAfter := info.RetryAfterSeconds
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
			Success: false,
			Message: "Rate limit exceeded",
			Data:    info,
			Error: dto.ErrorDetail{
				Code:       "RATE_LIMIT_EXCEEDED",
				RetryAfter: &retryAfter,
			},
		})
	}
	return successResponse(c, fiber.StatusOK, "Request allowed", info)
}
