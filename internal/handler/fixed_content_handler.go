package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"signage/internal/service"
)

// FixedContentHandler handles fixed content endpoints.
type FixedContentHandler struct {
	fixed         service.FixedContentService
	defaultTenant string
}

// NewFixedContentHandler creates a new fixed content handler.
func NewFixedContentHandler(fixed service.FixedContentService, defaultTenant string) *FixedContentHandler {
	return &FixedContentHandler{fixed: fixed, defaultTenant: defaultTenant}
}

// CreateFixedContentRequest represents a new fixed content block.
type CreateFixedContentRequest struct {
	Type     string `json:"type" validate:"required,max=64"`
	Content  string `json:"content" validate:"required"`
	IsActive *bool  `json:"is_active"`
	Order    *int   `json:"order" validate:"omitempty,min=0"`
	FontSize *int   `json:"font_size" validate:"omitempty,min=8,max=200"`
}

// UpdateFixedContentRequest represents a partial block update.
type UpdateFixedContentRequest struct {
	Type     *string `json:"type" validate:"omitempty,min=1,max=64"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	IsActive *bool   `json:"is_active"`
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	FontSize *int    `json:"font_size" validate:"omitempty,min=8,max=200"`
}

// ReorderFixedContentRequest carries a whole reorder batch.
type ReorderFixedContentRequest struct {
	FixedContentOrders []service.RawOrderUpdate `json:"fixed_content_orders"`
}

// ListFixedContent godoc
// @Summary List active fixed content for display
// @Tags fixed-content
// @Produce json
// @Success 200 {array} model.FixedContent
// @Router /fixed-content [get]
func (h *FixedContentHandler) ListFixedContent(c echo.Context) error {
	blocks, err := h.fixed.ListForDisplay(c.Request().Context(), tenantOf(c, h.defaultTenant))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, blocks)
}

// ListAdminFixedContent godoc
// @Summary List all fixed content
// @Tags fixed-content
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.FixedContent
// @Failure 403 {object} errors.ErrorResponse
// @Router /fixed-content/admin [get]
func (h *FixedContentHandler) ListAdminFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	blocks, err := h.fixed.ListForAdmin(c.Request().Context(), id.Tenant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, blocks)
}

// GetFixedContent godoc
// @Summary Get fixed content by id
// @Tags fixed-content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fixed content ID"
// @Success 200 {object} model.FixedContent
// @Failure 404 {object} errors.ErrorResponse
// @Router /fixed-content/{id} [get]
func (h *FixedContentHandler) GetFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	blockID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	block, err := h.fixed.Get(c.Request().Context(), id.Tenant, blockID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, block)
}

// CreateFixedContent godoc
// @Summary Create fixed content
// @Tags fixed-content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFixedContentRequest true "Block data"
// @Success 201 {object} model.FixedContent
// @Failure 400 {object} errors.ErrorResponse
// @Router /fixed-content [post]
func (h *FixedContentHandler) CreateFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var req CreateFixedContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	block, err := h.fixed.Create(c.Request().Context(), id.Tenant, service.CreateFixedContentInput{
		Type:     req.Type,
		Content:  req.Content,
		IsActive: req.IsActive,
		Order:    req.Order,
		FontSize: req.FontSize,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, block)
}

// UpdateFixedContent godoc
// @Summary Update fixed content
// @Tags fixed-content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fixed content ID"
// @Param request body UpdateFixedContentRequest true "Fields to change"
// @Success 200 {object} model.FixedContent
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /fixed-content/{id} [put]
func (h *FixedContentHandler) UpdateFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	blockID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateFixedContentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	block, err := h.fixed.Update(c.Request().Context(), id.Tenant, blockID, service.UpdateFixedContentInput{
		Type:     req.Type,
		Content:  req.Content,
		IsActive: req.IsActive,
		Order:    req.Order,
		FontSize: req.FontSize,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, block)
}

// DeleteFixedContent godoc
// @Summary Delete fixed content
// @Tags fixed-content
// @Security BearerAuth
// @Param id path int true "Fixed content ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /fixed-content/{id} [delete]
func (h *FixedContentHandler) DeleteFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	blockID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.fixed.Delete(c.Request().Context(), id.Tenant, blockID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderFixedContent godoc
// @Summary Reorder fixed content
// @Tags fixed-content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderFixedContentRequest true "New positions"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /fixed-content/reorder [post]
func (h *FixedContentHandler) ReorderFixedContent(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	var req ReorderFixedContentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	updates, err := service.ParseOrderUpdates(req.FixedContentOrders)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.fixed.Reorder(c.Request().Context(), id.Tenant, updates); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "fixed content reordered successfully"})
}
