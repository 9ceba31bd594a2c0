package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"signage/internal/auth"
	"signage/internal/cache"
	"signage/internal/errors"
	"signage/internal/model"
	"signage/internal/repository"
)

const (
	userCacheTTL      = 5 * time.Minute
	bcryptCost        = 10
	minPasswordLength = 6
	maxUsernameLength = 64
)

// CreateUserInput holds the fields of a new user. Role defaults to VIEWER.
type CreateUserInput struct {
	Username string
	Password string
	Role     model.Role
}

// UpdateUserInput holds a partial user update.
type UpdateUserInput struct {
	Username *string
	Password *string
	Role     *model.Role
}

// UserService exposes domain operations.
type UserService interface {
	List(ctx context.Context, tenant string) ([]model.User, error)
	Get(ctx context.Context, tenant string, id uint) (*model.User, error)
	Create(ctx context.Context, tenant string, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, actor auth.Identity, id uint, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor auth.Identity, id uint) error
	// FindForAuth resolves a token subject regardless of tenant.
	FindForAuth(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) List(ctx context.Context, tenant string) ([]model.User, error) {
	return s.repo.ListByTenant(ctx, tenant)
}

func (s *userService) Get(ctx context.Context, tenant string, id uint) (*model.User, error) {
	user, err := s.repo.FindInTenant(ctx, tenant, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, tenant string, in CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleViewer
	}
	if !role.Valid() {
		return nil, errors.NewValidationError("role", "must be ADMIN or VIEWER")
	}

	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Tenant:       tenant,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor auth.Identity, id uint, in UpdateUserInput) (*model.User, error) {
	if actor.UserID == id {
		return nil, errors.ErrSelfModification
	}

	updates := map[string]interface{}{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if err := s.ensureUsernameFree(ctx, username, id); err != nil {
			return nil, err
		}
		updates["username"] = username
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, errors.NewValidationError("role", "must be ADMIN or VIEWER")
		}
		updates["role"] = *in.Role
	}
	if len(updates) == 0 {
		return nil, errors.ErrNoFieldsToUpdate
	}

	if err := s.repo.Update(ctx, actor.Tenant, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUsernameTaken
		}
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return s.Get(ctx, actor.Tenant, id)
}

func (s *userService) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if actor.UserID == id {
		return errors.ErrSelfModification
	}
	if err := s.repo.Delete(ctx, actor.Tenant, id); err != nil {
		return notFound(err, errors.ErrUserNotFound)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) FindForAuth(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// ensureUsernameFree fails when username belongs to a user other than self.
func (s *userService) ensureUsernameFree(ctx context.Context, username string, self uint) error {
	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != self:
		return errors.ErrUsernameTaken
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("check username: %w", err)
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return errors.NewValidationError("username", "is required")
	}
	if len(username) > maxUsernameLength {
		return errors.NewValidationError("username", fmt.Sprintf("must be at most %d characters", maxUsernameLength))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}
