// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/services"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware validates admin JWTs for the management API
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// AdminAuthenticate validates the bearer token and stores admin context
// values for downstream handlers
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			}
			if errors.Is(err, services.ErrTokenInvalid) {
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			}
			return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
		}
		if claims.TokenType != "access" {
			return unauthorized(c, "Refresh tokens cannot access the API", "TOKEN_INVALID")
		}

		c.Locals("admin_id", claims.AdminID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}
