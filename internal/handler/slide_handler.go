package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"signage/internal/service"
)

// SlideHandler handles slide endpoints.
type SlideHandler struct {
	slides        service.SlideService
	defaultTenant string
}

// NewSlideHandler creates a new slide handler. Anonymous display reads use
// defaultTenant.
func NewSlideHandler(slides service.SlideService, defaultTenant string) *SlideHandler {
	return &SlideHandler{slides: slides, defaultTenant: defaultTenant}
}

// CreateSlideRequest represents a new slide. Omitted fields take defaults.
type CreateSlideRequest struct {
	Title     string       `json:"title" validate:"required"`
	Content   string       `json:"content" validate:"required"`
	Duration  *int         `json:"duration" validate:"omitempty,min=1,max=3600"`
	Order     *int         `json:"order" validate:"omitempty,min=0"`
	IsActive  *bool        `json:"is_active"`
	FontSize  *int         `json:"font_size" validate:"omitempty,min=8,max=200"`
	ExpiresAt OptionalTime `json:"expires_at" swaggertype:"string" format:"date-time"`
}

// UpdateSlideRequest represents a partial slide update. expires_at set to
// null clears the expiry.
type UpdateSlideRequest struct {
	Title      *string      `json:"title" validate:"omitempty,min=1"`
	Content    *string      `json:"content" validate:"omitempty,min=1"`
	Duration   *int         `json:"duration" validate:"omitempty,min=1,max=3600"`
	Order      *int         `json:"order" validate:"omitempty,min=0"`
	IsActive   *bool        `json:"is_active"`
	FontSize   *int         `json:"font_size" validate:"omitempty,min=8,max=200"`
	ExpiresAt  OptionalTime `json:"expires_at" swaggertype:"string" format:"date-time"`
	IsArchived *bool        `json:"is_archived"`
}

// ReorderSlidesRequest carries a whole reorder batch.
type ReorderSlidesRequest struct {
	SlideOrders []service.RawOrderUpdate `json:"slide_orders"`
}

// ListSlides godoc
// @Summary List slides for display
// @Description Active, unarchived, unexpired slides of the caller's tenant, or of the default tenant for anonymous callers.
// @Tags slides
// @Produce json
// @Success 200 {array} model.Slide
// @Failure 500 {object} errors.ErrorResponse
// @Router /slides [get]
func (h *SlideHandler) ListSlides(c echo.Context) error {
	slides, err := h.slides.ListForDisplay(c.Request().Context(), tenantOf(c, h.defaultTenant))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slides)
}

// ListAdminSlides godoc
// @Summary List all unarchived slides
// @Tags slides
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Slide
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /slides/admin [get]
func (h *SlideHandler) ListAdminSlides(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	slides, err := h.slides.ListForAdmin(c.Request().Context(), id.Tenant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slides)
}

// ListArchivedSlides godoc
// @Summary List archived slides
// @Tags slides
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ArchivedSlides
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /slides/archived [get]
func (h *SlideHandler) ListArchivedSlides(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	archived, err := h.slides.Archived(c.Request().Context(), id.Tenant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, archived)
}

// GetSlide godoc
// @Summary Get slide by id
// @Tags slides
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Success 200 {object} model.Slide
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/{id} [get]
func (h *SlideHandler) GetSlide(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	slideID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	slide, err := h.slides.Get(c.Request().Context(), id.Tenant, slideID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slide)
}

// CreateSlide godoc
// @Summary Create slide
// @Tags slides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSlideRequest true "Slide data"
// @Success 201 {object} model.Slide
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /slides [post]
func (h *SlideHandler) CreateSlide(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var req CreateSlideRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slide, err := h.slides.Create(c.Request().Context(), id.Tenant, service.CreateSlideInput{
		Title:     req.Title,
		Content:   req.Content,
		Duration:  req.Duration,
		Order:     req.Order,
		IsActive:  req.IsActive,
		FontSize:  req.FontSize,
		ExpiresAt: req.ExpiresAt.Value,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, slide)
}

// UpdateSlide godoc
// @Summary Update slide
// @Description Only the fields present are changed. is_archived archives or restores the slide.
// @Tags slides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param request body UpdateSlideRequest true "Fields to change"
// @Success 200 {object} model.Slide
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/{id} [put]
func (h *SlideHandler) UpdateSlide(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	slideID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateSlideRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.UpdateSlideInput{
		Title:      req.Title,
		Content:    req.Content,
		Duration:   req.Duration,
		Order:      req.Order,
		IsActive:   req.IsActive,
		FontSize:   req.FontSize,
		IsArchived: req.IsArchived,
	}
	if req.ExpiresAt.Set {
		in.ExpiresAt = req.ExpiresAt.Value
		in.ClearExpiresAt = req.ExpiresAt.Value == nil
	}

	slide, err := h.slides.Update(c.Request().Context(), id.Tenant, slideID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slide)
}

// DeleteSlide godoc
// @Summary Delete slide
// @Description Removes the slide, its attachments and their files.
// @Tags slides
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/{id} [delete]
func (h *SlideHandler) DeleteSlide(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	slideID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.slides.Delete(c.Request().Context(), id.Tenant, slideID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderSlides godoc
// @Summary Reorder slides
// @Description Applies every entry or none. Unknown ids or ids of another tenant reject the batch.
// @Tags slides
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderSlidesRequest true "New positions"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/reorder [post]
func (h *SlideHandler) ReorderSlides(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var req ReorderSlidesRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	updates, err := service.ParseOrderUpdates(req.SlideOrders)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.slides.Reorder(c.Request().Context(), id.Tenant, updates); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "slides reordered successfully"})
}
