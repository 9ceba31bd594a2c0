package repository

import (
	"context"

	"gorm.io/gorm"

	"signage/internal/model"
)

// FixedContentRepository defines fixed content persistence operations.
type FixedContentRepository interface {
	Create(ctx context.Context, block *model.FixedContent) error
	NextOrder(ctx context.Context, tenant string) (int, error)
	FindByID(ctx context.Context, tenant string, id uint) (*model.FixedContent, error)
	ListActive(ctx context.Context, tenant string) ([]model.FixedContent, error)
	ListAll(ctx context.Context, tenant string) ([]model.FixedContent, error)
	Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, tenant string, id uint) error
	Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo FixedContentRepository) error) error
}

type fixedContentRepository struct {
	db *gorm.DB
}

// NewFixedContentRepository creates a new fixed content repository.
func NewFixedContentRepository(db *gorm.DB) FixedContentRepository {
	return &fixedContentRepository{db: db}
}

func (r *fixedContentRepository) Create(ctx context.Context, block *model.FixedContent) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *fixedContentRepository) NextOrder(ctx context.Context, tenant string) (int, error) {
	return nextOrder(ctx, r.db, &model.FixedContent{}, tenant)
}

func (r *fixedContentRepository) FindByID(ctx context.Context, tenant string, id uint) (*model.FixedContent, error) {
	var block model.FixedContent
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant = ?", id, tenant).First(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *fixedContentRepository) ListActive(ctx context.Context, tenant string) ([]model.FixedContent, error) {
	blocks := []model.FixedContent{}
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND is_active = ?", tenant, true).
		Order(orderClause).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *fixedContentRepository) ListAll(ctx context.Context, tenant string) ([]model.FixedContent, error) {
	blocks := []model.FixedContent{}
	if err := r.db.WithContext(ctx).Where("tenant = ?", tenant).Order(orderClause).Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *fixedContentRepository) Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.FixedContent{}).
		Where("id = ? AND tenant = ?", id, tenant).
		Updates(updates)
	return affected(res)
}

func (r *fixedContentRepository) Delete(ctx context.Context, tenant string, id uint) error {
	return affected(r.db.WithContext(ctx).Where("id = ? AND tenant = ?", id, tenant).Delete(&model.FixedContent{}))
}

func (r *fixedContentRepository) Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOrder(ctx, tx, &model.FixedContent{}, tenant, updates)
	})
}

// WithTransaction executes a function within a database transaction.
func (r *fixedContentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo FixedContentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &fixedContentRepository{db: tx})
	})
}
