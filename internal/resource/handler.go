package resource

import (
	"errors"
	"net/http"

	"ResourceShare/internal/apperrors"

	"github.com/labstack/echo/v4"
)

// ResourceHandler handles HTTP requests for resources.
type ResourceHandler struct {
	service *ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(service *ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// CreateResource uploads a resource for moderation.
func (h *ResourceHandler) CreateResource(c echo.Context) error {
	var req CreateResourceRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	res, err := h.service.CreateResource(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ListResources lists resources, approved ones unless the status query says otherwise.
// An empty status disables status filtering.
func (h *ResourceHandler) ListResources(c echo.Context) error {
	f := ListFilter{Status: StatusApproved, Limit: DefaultListLimit}
	if c.QueryParams().Has("status") {
		f.Status = c.QueryParam("status")
	}

	b := echo.QueryParamsBinder(c).
		String("subject", &f.Subject).
		String("uploaded_by", &f.UploadedBy).
		Int64("limit", &f.Limit)
	if c.QueryParam("semester") != "" {
		f.Semester = new(int)
		b = b.Int("semester", f.Semester)
	}
	if err := b.BindError(); err != nil {
		return bindingError(err)
	}
	if f.Limit < 0 {
		return apperrors.Validation("limit must not be negative").WithFields(map[string]string{"limit": "must not be negative"})
	}

	resources, err := h.service.ListResources(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resources)
}

// ListPending lists resources awaiting moderation.
func (h *ResourceHandler) ListPending(c echo.Context) error {
	var semester *int
	subject := c.QueryParam("subject")
	if c.QueryParam("semester") != "" {
		semester = new(int)
		if err := echo.QueryParamsBinder(c).Int("semester", semester).BindError(); err != nil {
			return bindingError(err)
		}
	}

	resources, err := h.service.ListPending(c.Request().Context(), semester, subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resources)
}

// ApproveResource approves the resource in the id path parameter.
func (h *ResourceHandler) ApproveResource(c echo.Context) error {
	var req ApproveRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	res, err := h.service.ApproveResource(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func bindingError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return apperrors.Validation(be.Field + " must be an integer").
			WithFields(map[string]string{be.Field: "must be an integer"})
	}
	return apperrors.Validation("Invalid query parameters")
}
