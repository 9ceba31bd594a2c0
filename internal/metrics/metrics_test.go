package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/slides/:id", func(c echo.Context) error {
		if c.Param("id") == "404" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "404"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slides/"+id, nil))
	}

	body := scrape(t)
	assert.Contains(t, body, `signage_http_requests_total{method="GET",path="/api/slides/:id",status="200"} 2`)
	assert.Contains(t, body, `signage_http_requests_total{method="GET",path="/api/slides/:id",status="404"} 1`)
	assert.NotContains(t, body, `path="/api/slides/1"`)
}

func TestHandlerExposesCollectors(t *testing.T) {
	SweepFinished(3, 1)
	DisplayInvalidated("local")
	DisplayConnected(1)
	DisplayConnected(-1)

	body := scrape(t)
	assert.Contains(t, body, "signage_sweeper_archived_slides_total")
	assert.Contains(t, body, `signage_display_invalidations_total{source="local"}`)
	assert.Contains(t, body, "signage_display_ws_connections 0")
}
