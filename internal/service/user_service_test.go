package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"signage/internal/auth"
	"signage/internal/db/dbtest"
	"signage/internal/errors"
	"signage/internal/model"
	"signage/internal/repository"
)

func newUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()
	repo := repository.NewUserRepository(dbtest.New(t))
	return NewUserService(repo, nil), repo
}

func TestUserService_Create(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "t1", CreateUserInput{Username: " alice ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleViewer, user.Role)
	assert.Equal(t, "t1", user.Tenant)

	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = svc.Create(ctx, "t2", CreateUserInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, errors.ErrUsernameTaken, "usernames are unique across tenants")

	_, err = svc.Create(ctx, "t1", CreateUserInput{Username: "bob", Password: "123"})
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.Create(ctx, "t1", CreateUserInput{Username: "bob", Password: "secret1", Role: "ROOT"})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestUserService_UpdateAndDelete(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, "t1", CreateUserInput{Username: "admin", Password: "secret1", Role: model.RoleAdmin})
	require.NoError(t, err)
	viewer, err := svc.Create(ctx, "t1", CreateUserInput{Username: "tv", Password: "secret1"})
	require.NoError(t, err)
	outsider, err := svc.Create(ctx, "t2", CreateUserInput{Username: "other", Password: "secret1"})
	require.NoError(t, err)

	actor := auth.Identity{UserID: admin.ID, Username: "admin", Role: model.RoleAdmin, Tenant: "t1"}

	_, err = svc.Update(ctx, actor, admin.ID, UpdateUserInput{Role: roleRef(model.RoleViewer)})
	assert.ErrorIs(t, err, errors.ErrSelfModification)
	assert.ErrorIs(t, svc.Delete(ctx, actor, admin.ID), errors.ErrSelfModification)

	_, err = svc.Update(ctx, actor, viewer.ID, UpdateUserInput{})
	assert.ErrorIs(t, err, errors.ErrNoFieldsToUpdate)

	_, err = svc.Update(ctx, actor, viewer.ID, UpdateUserInput{Username: strPtr("other")})
	assert.ErrorIs(t, err, errors.ErrUsernameTaken)

	updated, err := svc.Update(ctx, actor, viewer.ID, UpdateUserInput{Role: roleRef(model.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = svc.Update(ctx, actor, outsider.ID, UpdateUserInput{Role: roleRef(model.RoleAdmin)})
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, actor, outsider.ID), errors.ErrUserNotFound)

	require.NoError(t, svc.Delete(ctx, actor, viewer.ID))
	_, err = svc.FindForAuth(ctx, viewer.ID)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	users, err := svc.List(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func roleRef(r model.Role) *model.Role { return &r }
