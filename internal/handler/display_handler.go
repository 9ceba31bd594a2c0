package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"signage/internal/display"
	"signage/internal/logger"
	"signage/internal/model"
	"signage/internal/service"
)

// VersionSource reports the content version of a tenant.
type VersionSource interface {
	Version(ctx context.Context, tenant string) int64
}

// DisplayHandler serves what unattended displays poll and subscribe to.
type DisplayHandler struct {
	slides        service.SlideService
	fixed         service.FixedContentService
	versions      VersionSource
	hub           *display.Hub
	defaultTenant string
	now           func() time.Time
}

// NewDisplayHandler creates a new display handler.
func NewDisplayHandler(
	slides service.SlideService,
	fixed service.FixedContentService,
	versions VersionSource,
	hub *display.Hub,
	defaultTenant string,
) *DisplayHandler {
	return &DisplayHandler{
		slides:        slides,
		fixed:         fixed,
		versions:      versions,
		hub:           hub,
		defaultTenant: defaultTenant,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// VersionResponse is the cheap check a display can poll between full fetches.
type VersionResponse struct {
	Tenant  string `json:"tenant"`
	Version int64  `json:"version"`
}

func noStore(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
}

// Snapshot godoc
// @Summary Display snapshot
// @Description Everything a display renders: eligible slides with attachments and active fixed content.
// @Tags display
// @Produce json
// @Success 200 {object} model.DisplaySnapshot
// @Failure 500 {object} errors.ErrorResponse
// @Router /display [get]
func (h *DisplayHandler) Snapshot(c echo.Context) error {
	ctx := c.Request().Context()
	tenant := tenantOf(c, h.defaultTenant)

	// Read the version first so a change racing this request is seen again next poll.
	version := h.versions.Version(ctx, tenant)
	slides, err := h.slides.ListForDisplay(ctx, tenant)
	if err != nil {
		return respondError(c, err)
	}
	fixed, err := h.fixed.ListForDisplay(ctx, tenant)
	if err != nil {
		return respondError(c, err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, model.DisplaySnapshot{
		Tenant:       tenant,
		Version:      version,
		GeneratedAt:  h.now(),
		Slides:       slides,
		FixedContent: fixed,
	})
}

// Version godoc
// @Summary Display content version
// @Tags display
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /display/version [get]
func (h *DisplayHandler) Version(c echo.Context) error {
	tenant := tenantOf(c, h.defaultTenant)
	noStore(c)
	return c.JSON(http.StatusOK, VersionResponse{
		Tenant:  tenant,
		Version: h.versions.Version(c.Request().Context(), tenant),
	})
}

// Watch godoc
// @Summary Display change notifications
// @Description Websocket. Sends hello, then an invalidate message whenever the tenant's content changes.
// @Tags display
// @Param access_token query string false "Access token"
// @Success 101
// @Router /ws/display [get]
func (h *DisplayHandler) Watch(c echo.Context) error {
	ctx := c.Request().Context()
	tenant := tenantOf(c, h.defaultTenant)
	hello := display.Message{
		Type:    display.MessageHello,
		Tenant:  tenant,
		Version: h.versions.Version(ctx, tenant),
	}
	if err := h.hub.Serve(ctx, c.Response(), c.Request(), tenant, hello); err != nil {
		logger.Debugf("display websocket for %s closed: %v", tenant, err)
	}
	return nil
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping checks the database.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {string} string "unavailable"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c echo.Context) error {
	if h.ping != nil {
		if err := h.ping(c.Request().Context()); err != nil {
			logger.Warningf("health check failed: %v", err)
			return c.String(http.StatusServiceUnavailable, "unavailable")
		}
	}
	return c.String(http.StatusOK, "ok")
}
