// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const defaultRequestTimeout = 30 * time.Second

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "url":
		return err.Field() + " must be a valid URL"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "datetime":
		return err.Field() + " must be a date in YYYY-MM-DD format"
	case "uuid4":
		return err.Field() + " must be a valid UUID"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationMessages(err error) []string {
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			messages = append(messages, getValidationErrorMessage(verr))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return messages
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// storeUnavailableResponse answers a transient backing-store outage. 503 with
// a stable code so clients can tell a retryable outage from an internal fault.
func storeUnavailableResponse(c fiber.Ctx) error {
	return errorResponse(c, fiber.StatusServiceUnavailable, "Backing store unavailable, please retry", "STORE_UNAVAILABLE", nil)
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// createRequestContext creates a context with a timeout and request-scoped
// values for observability.
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, defaultRequestTimeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
