package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"signage/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seeds    service.SeedService
	notifier service.DisplayNotifier
}

// NewSeedHandler creates a new seed handler. notifier may be nil.
func NewSeedHandler(seeds service.SeedService, notifier service.DisplayNotifier) *SeedHandler {
	return &SeedHandler{seeds: seeds, notifier: notifier}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	Tenant  string `json:"tenant"`
	service.SeedResult
}

// SeedDefaults godoc
// @Summary Install starter content for the caller's tenant
// @Description Creates the default accounts, a welcome slide and two fixed content blocks when missing.
// @Tags seed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeedResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed [post]
func (h *SeedHandler) SeedDefaults(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	result, err := h.seeds.SeedDefaults(c.Request().Context(), id.Tenant)
	if err != nil {
		return respondError(c, err)
	}
	if h.notifier != nil && result.Slides+result.FixedContent > 0 {
		h.notifier.Touch(c.Request().Context(), id.Tenant)
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message:    "defaults seeded",
		Tenant:     id.Tenant,
		SeedResult: *result,
	})
}
