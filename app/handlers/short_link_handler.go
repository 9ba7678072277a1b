package handlers

import (
	"log"

	"github.com/eventdesk/eventdesk/app/dto"
	"github.com/eventdesk/eventdesk/app/middleware"
	businessflow "github.com/eventdesk/eventdesk/business_flow"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ShortLinkHandlerInterface defines the contract for shortlink handlers.
// Visit is the public redirect; the rest is the management API.
type ShortLinkHandlerInterface interface {
	Visit(c fiber.Ctx) error
	Set(c fiber.Ctx) error
	GetByKey(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	Expire(c fiber.Ctx) error
}

type ShortLinkHandler struct {
	flow      businessflow.ShortLinkFlow
	validator *validator.Validate
}

func NewShortLinkHandler(flow businessflow.ShortLinkFlow) *ShortLinkHandler {
	return &ShortLinkHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Visit resolves a token and redirects to its target, recording the click.
// Unknown and deactivated tokens both land on 404.
func (h *ShortLinkHandler) Visit(c fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}

	click := businessflow.NewClickContext(c.Get("User-Agent"), c.Get("Referer"), c.IP())
	target, err := h.flow.Resolve(createRequestContext(c, "/s/"+token), token, click)
	if err != nil {
		if businessflow.IsShortLinkNotFound(err) {
			middleware.RecordRedirect("not_found")
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		if businessflow.IsShortLinkInactive(err) {
			middleware.RecordRedirect("inactive")
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		middleware.RecordRedirect("error")
		log.Println("Resolve short link failed", err)
		if businessflow.IsStoreUnavailable(err) {
			return c.Status(fiber.StatusServiceUnavailable).SendString("service unavailable")
		}
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	middleware.RecordRedirect("hit")
	c.Redirect().Status(fiber.StatusFound).To(target)
	return nil
}

// Set mints (or re-fetches) the token for an application key
func (h *ShortLinkHandler) Set(c fiber.Ctx) error {
	var req dto.SetShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	token, err := h.flow.Set(createRequestContext(c, "/api/v1/shortlinks"), req.Key, req.TargetURL, req.OwnerKey, req.Metadata)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		if businessflow.IsTokenSpaceExhausted(err) {
			return errorResponse(c, fiber.StatusConflict, "Could not mint a unique token", "TOKEN_MINT_FAILED", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to set short link", "SHORT_LINK_SET_FAILED", nil)
	}

	info, err := h.flow.GetByKey(createRequestContext(c, "/api/v1/shortlinks"), req.Key)
	if err != nil || info == nil {
		// Minting succeeded; fall back to the bare token.
		info = &businessflow.LinkInfo{Token: token, URL: req.TargetURL}
	}

	return successResponse(c, fiber.StatusOK, "Short link set successfully", dto.ShortLinkDTO{
		Key:      req.Key,
		Token:    info.Token,
		URL:      info.URL,
		ShortURL: info.ShortURL,
		QRURL:    utils.QRCodeURL(info.ShortURL, 0),
	})
}

// GetByKey looks up the link minted for a key without touching analytics
func (h *ShortLinkHandler) GetByKey(c fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Key is required", "VALIDATION_ERROR", nil)
	}

	info, err := h.flow.GetByKey(createRequestContext(c, "/api/v1/shortlinks/:key"), key)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to get short link", "SHORT_LINK_GET_FAILED", nil)
	}
	if info == nil {
		return errorResponse(c, fiber.StatusNotFound, "Short link not found", "SHORT_LINK_NOT_FOUND", nil)
	}

	return successResponse(c, fiber.StatusOK, "Short link retrieved successfully", dto.ShortLinkDTO{
		Key:      key,
		Token:    info.Token,
		URL:      info.URL,
		ShortURL: info.ShortURL,
		QRURL:    utils.QRCodeURL(info.ShortURL, 0),
	})
}

// Verify reports whether a token exists and is active
func (h *ShortLinkHandler) Verify(c fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Token is required", "VALIDATION_ERROR", nil)
	}

	active, err := h.flow.Verify(createRequestContext(c, "/api/v1/shortlinks/verify/:token"), token)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to verify short link", "SHORT_LINK_VERIFY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Short link verified", dto.VerifyShortLinkResponse{
		Token:  token,
		Active: active,
	})
}

// Expire deactivates every token owned by the given owner key
func (h *ShortLinkHandler) Expire(c fiber.Ctx) error {
	var req dto.ExpireShortLinksRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	if err := h.flow.ExpireByOwner(createRequestContext(c, "/api/v1/shortlinks/expire"), req.OwnerKey); err != nil {
		if businessflow.IsValidationError(err) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to expire short links", "SHORT_LINK_EXPIRE_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Short links expired successfully", nil)
}
