package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"signage/internal/model"
)

// SlideRepository defines slide persistence operations.
// Every method except the sweeper pair (ListExpirable, ArchiveExpired) is
// scoped by tenant, and mutations carry the tenant in their WHERE clause.
type SlideRepository interface {
	Create(ctx context.Context, slide *model.Slide) error
	NextOrder(ctx context.Context, tenant string) (int, error)
	FindByID(ctx context.Context, tenant string, id uint) (*model.Slide, error)
	ListDisplay(ctx context.Context, tenant string, now time.Time) ([]model.Slide, error)
	ListAdmin(ctx context.Context, tenant string) ([]model.Slide, error)
	ListArchived(ctx context.Context, tenant string) ([]model.Slide, error)
	Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error
	Delete(ctx context.Context, tenant string, id uint) ([]model.SlideAttachment, error)
	Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error
	// Sweeper
	ListExpirable(ctx context.Context, now time.Time) ([]model.Slide, error)
	ArchiveExpired(ctx context.Context, id uint, now time.Time) (bool, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo SlideRepository) error) error
}

type slideRepository struct {
	db *gorm.DB
}

// NewSlideRepository creates a new slide repository.
func NewSlideRepository(db *gorm.DB) SlideRepository {
	return &slideRepository{db: db}
}

// Create inserts a slide as given; the caller decides the order.
func (r *slideRepository) Create(ctx context.Context, slide *model.Slide) error {
	return r.db.WithContext(ctx).Create(slide).Error
}

// NextOrder returns the order that appends a slide to the end of the tenant's list.
func (r *slideRepository) NextOrder(ctx context.Context, tenant string) (int, error) {
	return nextOrder(ctx, r.db, &model.Slide{}, tenant)
}

// FindByID finds a slide with its attachments.
func (r *slideRepository) FindByID(ctx context.Context, tenant string, id uint) (*model.Slide, error) {
	var slide model.Slide
	if err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("id = ? AND tenant = ?", id, tenant).
		First(&slide).Error; err != nil {
		return nil, err
	}
	return &slide, nil
}

// ListDisplay lists display-eligible slides at now.
func (r *slideRepository) ListDisplay(ctx context.Context, tenant string, now time.Time) ([]model.Slide, error) {
	slides := []model.Slide{}
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("tenant = ? AND is_active = ? AND is_archived = ?", tenant, true, false).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Order(orderClause).
		Find(&slides).Error
	if err != nil {
		return nil, err
	}
	return slides, nil
}

// ListAdmin lists every non-archived slide, active or not.
func (r *slideRepository) ListAdmin(ctx context.Context, tenant string) ([]model.Slide, error) {
	slides := []model.Slide{}
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("tenant = ? AND is_archived = ?", tenant, false).
		Order(orderClause).
		Find(&slides).Error
	if err != nil {
		return nil, err
	}
	return slides, nil
}

// ListArchived lists archived slides, most recently changed first.
func (r *slideRepository) ListArchived(ctx context.Context, tenant string) ([]model.Slide, error) {
	slides := []model.Slide{}
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND is_archived = ?", tenant, true).
		Order("updated_at DESC, id DESC").
		Find(&slides).Error
	if err != nil {
		return nil, err
	}
	return slides, nil
}

// Update applies column updates to one slide of tenant.
func (r *slideRepository) Update(ctx context.Context, tenant string, id uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Slide{}).
		Where("id = ? AND tenant = ?", id, tenant).
		Updates(updates)
	return affected(res)
}

// Delete removes a slide and its attachment rows in one transaction and
// returns the removed attachments so their files can be cleaned up.
func (r *slideRepository) Delete(ctx context.Context, tenant string, id uint) ([]model.SlideAttachment, error) {
	var attachments []model.SlideAttachment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Slide{}).Where("id = ? AND tenant = ?", id, tenant).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("slide_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("slide_id = ?", id).Delete(&model.SlideAttachment{}).Error; err != nil {
			return err
		}
		return affected(tx.Where("id = ? AND tenant = ?", id, tenant).Delete(&model.Slide{}))
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// Reorder writes a batch of orders atomically.
func (r *slideRepository) Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyOrder(ctx, tx, &model.Slide{}, tenant, updates)
	})
}

// ListExpirable lists slides across all tenants whose expiry has passed but
// that are not archived yet.
func (r *slideRepository) ListExpirable(ctx context.Context, now time.Time) ([]model.Slide, error) {
	var slides []model.Slide
	err := r.db.WithContext(ctx).
		Where("is_archived = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now.UTC()).
		Order("id ASC").
		Find(&slides).Error
	if err != nil {
		return nil, err
	}
	return slides, nil
}

// ArchiveExpired archives one slide if it is still unarchived and expired at
// now. It reports whether a row changed, which makes concurrent sweeps and
// admin edits between list and update harmless.
func (r *slideRepository) ArchiveExpired(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Slide{}).
		Where("id = ? AND is_archived = ? AND expires_at IS NOT NULL AND expires_at <= ?", id, false, now.UTC()).
		Update("is_archived", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// WithTransaction executes a function within a database transaction.
func (r *slideRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo SlideRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &slideRepository{db: tx})
	})
}

func orderedAttachments(db *gorm.DB) *gorm.DB {
	return db.Order(orderClause)
}
