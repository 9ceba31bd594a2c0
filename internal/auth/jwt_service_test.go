package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: 7, Username: "admin", Role: model.RoleAdmin, Tenant: "lobby"}
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, issued, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, Identity{UserID: 7, Username: "admin", Role: model.RoleAdmin, Tenant: "lobby"}, claims.Identity())
	assert.True(t, claims.Identity().IsAdmin())
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, refresh, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, errWrongTokenType)

	access, _, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, errWrongTokenType)
}

func TestJWTService_RejectsForeignSecretAndExpiry(t *testing.T) {
	svc := NewJWTService("test-secret")
	token, _, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("other-secret").ValidateToken(token)
	assert.Error(t, err)

	expired := NewJWTService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, _, err := expired.GenerateAccessToken(testUser())
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(old)
	assert.Error(t, err)
}

func TestTokenStore_WithoutRedis(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.StoreRefreshToken(ctx, "jti", 7, time.Hour))
	_, err := store.GetRefreshToken(ctx, "jti")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	blacklisted, err := store.IsAccessTokenBlacklisted(ctx, "jti")
	assert.NoError(t, err)
	assert.False(t, blacklisted)
}
