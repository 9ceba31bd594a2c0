package repository

import (
	"context"

	"gorm.io/gorm"

	"signage/internal/model"
)

// UserRepository defines persistence operations.
// FindByID and FindByUsername are tenant-agnostic and reserved for
// authentication; everything else is scoped by tenant.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindInTenant(ctx context.Context, tenant string, id uint) (*model.User, error)
	ListByTenant(ctx context.Context, tenant string) ([]model.User, error)
	Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, tenant string, id uint) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindInTenant(ctx context.Context, tenant string, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant = ?", id, tenant).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByTenant(ctx context.Context, tenant string) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("tenant = ?", tenant).Order("username ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND tenant = ?", id, tenant).
		Updates(updates)
	return affected(res)
}

func (r *userRepository) Delete(ctx context.Context, tenant string, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND tenant = ?", id, tenant).Delete(&model.User{})
	return affected(res)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
