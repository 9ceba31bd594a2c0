package service

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/errors"
	"signage/internal/model"
)

func decodeBatch(t *testing.T, body string) []RawOrderUpdate {
	t.Helper()
	var raw []RawOrderUpdate
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestParseOrderUpdates(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []model.OrderUpdate
		wantErr bool
	}{
		{name: "numbers", body: `[{"id":1,"order":2},{"id":2,"order":1}]`, want: []model.OrderUpdate{{ID: 1, Order: 2}, {ID: 2, Order: 1}}},
		{name: "string ids", body: `[{"id":"7","order":0}]`, want: []model.OrderUpdate{{ID: 7, Order: 0}}},
		{name: "negative order", body: `[{"id":3,"order":-1}]`, want: []model.OrderUpdate{{ID: 3, Order: -1}}},
		{name: "empty batch", body: `[]`, wantErr: true},
		{name: "non-numeric id", body: `[{"id":1,"order":1},{"id":"abc","order":2}]`, wantErr: true},
		{name: "zero id", body: `[{"id":0,"order":1}]`, wantErr: true},
		{name: "fractional order", body: `[{"id":1,"order":1.5}]`, wantErr: true},
		{name: "string order", body: `[{"id":1,"order":"1"}]`, wantErr: true},
		{name: "missing order", body: `[{"id":1}]`, wantErr: true},
		{name: "duplicate id", body: `[{"id":1,"order":1},{"id":"1","order":2}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrderUpdates(decodeBatch(t, tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidBatch)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
