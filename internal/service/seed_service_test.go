package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/db/dbtest"
	"signage/internal/model"
	"signage/internal/repository"
)

func TestSeedService_SeedDefaultsIsIdempotent(t *testing.T) {
	gormDB := dbtest.New(t)
	users := repository.NewUserRepository(gormDB)
	slides := repository.NewSlideRepository(gormDB)
	blocks := repository.NewFixedContentRepository(gormDB)
	svc := NewSeedService(users, slides, blocks)
	ctx := context.Background()

	first, err := svc.SeedDefaults(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Users: 2, Slides: 1, FixedContent: 2}, first)

	second, err := svc.SeedDefaults(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{}, second)

	admin, err := users.FindByUsername(ctx, DefaultAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	tv, err := users.FindByUsername(ctx, DefaultViewerUsername)
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, tv.Role)

	login := NewAuthService(users, NewUserService(users, nil), nil, nil)
	_, err = login.Login(ctx, DefaultAdminUsername, "wrong")
	assert.Error(t, err)
}
