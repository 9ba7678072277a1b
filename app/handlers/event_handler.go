package handlers

import (
	"github.com/eventdesk/eventdesk/app/dto"
	businessflow "github.com/eventdesk/eventdesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// EventHandlerInterface defines the contract for event handlers
type EventHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	SetDefault(c fiber.Ctx) error
	Archive(c fiber.Ctx) error
	DownloadClicksCSV(c fiber.Ctx) error
	DownloadClicksExcel(c fiber.Ctx) error
}

// EventHandler handles event management HTTP requests
type EventHandler struct {
	eventFlow  businessflow.EventFlow
	reportFlow businessflow.EventReportFlow
	validator  *validator.Validate
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventFlow businessflow.EventFlow, reportFlow businessflow.EventReportFlow) *EventHandler {
	return &EventHandler{
		eventFlow:  eventFlow,
		reportFlow: reportFlow,
		validator:  validator.New(),
	}
}

// Create handles idempotent event creation. A request whose name matches an
// existing event returns that event with existed=true and a 200; a fresh
// event returns 201.
func (h *EventHandler) Create(c fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.eventFlow.CreateOrReuse(createRequestContext(c, "/api/v1/events"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return errorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		if businessflow.IsProvisioningFailed(err) || businessflow.ErrorCode(err) == "EVENT_PROVISIONING_FAILED" {
			return errorResponse(c, fiber.StatusBadGateway, "Failed to provision event page", "EVENT_PROVISIONING_FAILED", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create event", "EVENT_CREATE_FAILED", nil)
	}

	status := fiber.StatusCreated
	message := "Event created successfully"
	if result.Existed {
		status = fiber.StatusOK
		message = "Event already exists"
	}
	return successResponse(c, status, message, result)
}

// List returns every event row
func (h *EventHandler) List(c fiber.Ctx) error {
	result, err := h.eventFlow.List(createRequestContext(c, "/api/v1/events"))
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list events", "EVENT_LIST_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Events retrieved successfully", result)
}

// Get returns one event by UUID
func (h *EventHandler) Get(c fiber.Ctx) error {
	eventUUID := c.Params("uuid")

	result, err := h.eventFlow.Get(createRequestContext(c, "/api/v1/events/:uuid"), eventUUID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to get event", "EVENT_GET_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Event retrieved successfully", result)
}

// SetDefault marks the event as the default, clearing the flag elsewhere
func (h *EventHandler) SetDefault(c fiber.Ctx) error {
	eventUUID := c.Params("uuid")

	err := h.eventFlow.SetDefault(createRequestContext(c, "/api/v1/events/:uuid/default"), eventUUID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsEventArchived(err) {
			return errorResponse(c, fiber.StatusConflict, "Archived events cannot become default", "EVENT_ARCHIVED", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to set default event", "EVENT_SET_DEFAULT_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Default event updated successfully", nil)
}

// Archive flips the event to archived and deactivates its shortlinks
func (h *EventHandler) Archive(c fiber.Ctx) error {
	eventUUID := c.Params("uuid")

	err := h.eventFlow.Archive(createRequestContext(c, "/api/v1/events/:uuid/archive"), eventUUID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to archive event", "EVENT_ARCHIVE_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Event archived successfully", nil)
}

// DownloadClicksCSV streams the event's click analytics as CSV
func (h *EventHandler) DownloadClicksCSV(c fiber.Ctx) error {
	eventUUID := c.Params("uuid")

	filename, data, err := h.reportFlow.DownloadClicksCSV(createRequestContext(c, "/api/v1/events/:uuid/clicks.csv"), eventUUID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export clicks", "CLICK_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DownloadClicksExcel streams the event's click analytics as an Excel workbook
func (h *EventHandler) DownloadClicksExcel(c fiber.Ctx) error {
	eventUUID := c.Params("uuid")

	filename, data, err := h.reportFlow.DownloadClicksExcel(createRequestContext(c, "/api/v1/events/:uuid/clicks.xlsx"), eventUUID)
	if err != nil {
		if businessflow.IsEventNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Event not found", "EVENT_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return storeUnavailableResponse(c)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export clicks", "CLICK_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
