package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devdir/internal/identity"
	"devdir/internal/service"
)

// ContactHandler serves the metered contact action.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ViewContact godoc
// @Summary Reveal a developer's contact info
// @Description Companies are limited to a daily number of distinct developers; re-viewing the same developer on the same UTC day is free. Admins are not metered. remaining_quota is null for admins.
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Developer ID"
// @Success 200 {object} service.ContactResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /developers/{id}/contact [post]
func (h *ContactHandler) ViewContact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest("invalid developer ID", "INVALID_UUID")
	}

	result, err := h.contactService.ViewContact(c.Request().Context(), identity.FromContext(c.Request().Context()), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Quota godoc
// @Summary Today's contact quota
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.QuotaStatus
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /contacts/quota [get]
func (h *ContactHandler) Quota(c echo.Context) error {
	status, err := h.contactService.QuotaStatus(c.Request().Context(), identity.FromContext(c.Request().Context()))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
