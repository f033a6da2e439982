package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devdir/internal/identity"
	"devdir/internal/model"
	"devdir/internal/repository"
	"devdir/internal/service"
)

// DeveloperHandler serves developer profile endpoints.
type DeveloperHandler struct {
	developerService service.DeveloperService
}

// NewDeveloperHandler creates a new developer handler.
func NewDeveloperHandler(developerService service.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{developerService: developerService}
}

// ListDevelopersQuery holds the listing filters.
type ListDevelopersQuery struct {
	Field    string `query:"field" validate:"omitempty,oneof=web mobile ai backend frontend fullstack"`
	WorkType string `query:"work_type" validate:"omitempty,oneof=remote onsite hybrid"`
	Limit    int    `query:"limit" validate:"min=0,max=100"`
	Offset   int    `query:"offset" validate:"min=0"`
}

// CreateDeveloperRequest is the body of a profile creation.
type CreateDeveloperRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	WorkType  string  `json:"work_type" validate:"required,oneof=remote onsite hybrid"`
	Field     string  `json:"field" validate:"required,oneof=web mobile ai backend frontend fullstack"`
	GitHub    *string `json:"github" validate:"omitempty,url,max=255"`
	LinkedIn  *string `json:"linkedin" validate:"omitempty,url,max=255"`
	Email     string  `json:"email" validate:"required,email,max=255"`
}

// List godoc
// @Summary List developers
// @Description Contact fields are omitted unless the caller is a student or admin.
// @Tags developers
// @Produce json
// @Security BearerAuth
// @Param field query string false "Field" Enums(web, mobile, ai, backend, frontend, fullstack)
// @Param work_type query string false "Work type" Enums(remote, onsite, hybrid)
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} policy.DeveloperView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /developers [get]
func (h *DeveloperHandler) List(c echo.Context) error {
	var q ListDevelopersQuery
	if err := c.Bind(&q); err != nil {
		return badRequest("invalid query", "INVALID_QUERY")
	}
	if err := c.Validate(&q); err != nil {
		return badRequest(err.Error(), "VALIDATION_FAILED")
	}

	views, err := h.developerService.List(c.Request().Context(), identity.FromContext(c.Request().Context()), repository.DeveloperFilter{
		Field:    model.Field(q.Field),
		WorkType: model.WorkType(q.WorkType),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// Get godoc
// @Summary Get a developer
// @Description Contact fields are omitted unless the caller is a student or admin.
// @Tags developers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Developer ID"
// @Success 200 {object} policy.DeveloperView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /developers/{id} [get]
func (h *DeveloperHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest("invalid developer ID", "INVALID_UUID")
	}

	view, err := h.developerService.Get(c.Request().Context(), identity.FromContext(c.Request().Context()), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetOwn godoc
// @Summary Get own developer profile
// @Tags developers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} policy.DeveloperView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /developers/me [get]
func (h *DeveloperHandler) GetOwn(c echo.Context) error {
	view, err := h.developerService.GetOwn(c.Request().Context(), identity.FromContext(c.Request().Context()))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Create godoc
// @Summary Create own developer profile
// @Tags developers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDeveloperRequest true "Profile"
// @Success 201 {object} policy.DeveloperView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /developers [post]
func (h *DeveloperHandler) Create(c echo.Context) error {
	var req CreateDeveloperRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_BODY")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_FAILED")
	}

	view, err := h.developerService.Create(c.Request().Context(), identity.FromContext(c.Request().Context()), service.CreateDeveloperInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		WorkType:  model.WorkType(req.WorkType),
		Field:     model.Field(req.Field),
		GitHub:    req.GitHub,
		LinkedIn:  req.LinkedIn,
		Email:     req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}
