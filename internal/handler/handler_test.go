package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/auth"
	"signage/internal/model"
)

func TestOptionalTime(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		set     bool
		want    *time.Time
		wantErr bool
	}{
		{name: "absent", body: `{}`},
		{name: "null clears", body: `{"expires_at":null}`, set: true},
		{name: "empty clears", body: `{"expires_at":""}`, set: true},
		{name: "rfc3339 with offset", body: `{"expires_at":"2030-01-02T15:04:05+02:00"}`, set: true, want: ptrTime(time.Date(2030, 1, 2, 13, 4, 5, 0, time.UTC))},
		{name: "datetime-local as utc", body: `{"expires_at":"2030-01-02T15:04"}`, set: true, want: ptrTime(time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC))},
		{name: "garbage", body: `{"expires_at":"tomorrow"}`, wantErr: true},
		{name: "number", body: `{"expires_at":12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateSlideRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, req.ExpiresAt.Set)
			if tt.want == nil {
				assert.Nil(t, req.ExpiresAt.Value)
			} else {
				require.NotNil(t, req.ExpiresAt.Value)
				assert.True(t, tt.want.Equal(*req.ExpiresAt.Value))
				assert.Equal(t, time.UTC, req.ExpiresAt.Value.Location())
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestTenantOf(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "lobby", tenantOf(c, "lobby"))

	auth.SetIdentity(c, auth.Identity{UserID: 1, Role: model.RoleViewer, Tenant: "acme"})
	assert.Equal(t, "acme", tenantOf(c, "lobby"))
}

func TestParseID(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		raw  string
		want uint
		ok   bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tc.raw)
		got, err := parseID(c, "id")
		if tc.ok {
			require.NoError(t, err, tc.raw)
			assert.Equal(t, tc.want, got)
			continue
		}
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he, tc.raw)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}
