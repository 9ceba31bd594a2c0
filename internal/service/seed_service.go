package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"signage/internal/errors"
	"signage/internal/logger"
	"signage/internal/model"
	"signage/internal/repository"
)

// Default accounts created on an empty installation.
const (
	DefaultAdminUsername  = "admin"
	DefaultAdminPassword  = "admin123"
	DefaultViewerUsername = "tv"
	DefaultViewerPassword = "viewer123"
)

// SeedResult counts what SeedDefaults created.
type SeedResult struct {
	Users        int `json:"users"`
	Slides       int `json:"slides"`
	FixedContent int `json:"fixed_content"`
}

// SeedService installs the starter data of a tenant.
type SeedService interface {
	SeedDefaults(ctx context.Context, tenant string) (*SeedResult, error)
}

type seedService struct {
	users        repository.UserRepository
	slides       repository.SlideRepository
	fixedContent repository.FixedContentRepository
}

// NewSeedService creates a new seed service.
func NewSeedService(users repository.UserRepository, slides repository.SlideRepository, fixedContent repository.FixedContentRepository) SeedService {
	return &seedService{users: users, slides: slides, fixedContent: fixedContent}
}

// SeedDefaults creates the default admin and display accounts, a welcome slide
// and two fixed content blocks. Existing data is left alone, so calling it
// again is a no-op.
func (s *seedService) SeedDefaults(ctx context.Context, tenant string) (*SeedResult, error) {
	result := &SeedResult{}

	accounts := []struct {
		username, password string
		role               model.Role
	}{
		{DefaultAdminUsername, DefaultAdminPassword, model.RoleAdmin},
		{DefaultViewerUsername, DefaultViewerPassword, model.RoleViewer},
	}
	for _, a := range accounts {
		created, err := s.ensureUser(ctx, tenant, a.username, a.password, a.role)
		if err != nil {
			return nil, err
		}
		if created {
			result.Users++
			logger.Warningf("created default user %q in tenant %q; change its password", a.username, tenant)
		}
	}

	slides, err := s.slides.ListAdmin(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	if len(slides) == 0 {
		welcome := &model.Slide{
			Title:    "Welcome",
			Content:  "<h1>Welcome</h1><p>Edit this slide from the admin panel.</p>",
			Duration: model.DefaultSlideDuration,
			Order:    1,
			IsActive: true,
			FontSize: model.DefaultFontSize,
			Tenant:   tenant,
		}
		if err := s.slides.Create(ctx, welcome); err != nil {
			return nil, fmt.Errorf("create welcome slide: %w", err)
		}
		result.Slides++
	}

	blocks, err := s.fixedContent.ListAll(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("list fixed content: %w", err)
	}
	if len(blocks) == 0 {
		defaults := []model.FixedContent{
			{Type: "header", Content: "Digital Signage", IsActive: true, Order: 1, FontSize: 32, Tenant: tenant},
			{Type: "footer", Content: "Powered by signage", IsActive: true, Order: 2, FontSize: model.DefaultFontSize, Tenant: tenant},
		}
		for i := range defaults {
			if err := s.fixedContent.Create(ctx, &defaults[i]); err != nil {
				return nil, fmt.Errorf("create fixed content: %w", err)
			}
			result.FixedContent++
		}
	}

	return result, nil
}

func (s *seedService) ensureUser(ctx context.Context, tenant, username, password string, role model.Role) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find user %s: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Username: username, PasswordHash: string(hash), Role: role, Tenant: tenant}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user %s: %w", username, err)
	}
	return true, nil
}
