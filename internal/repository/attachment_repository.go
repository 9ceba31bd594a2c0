package repository

import (
	"context"

	"gorm.io/gorm"

	"signage/internal/model"
)

// AttachmentRepository defines slide attachment persistence operations.
// Attachments carry no tenant column; ownership is checked through the slide.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.SlideAttachment) error
	CountBySlide(ctx context.Context, slideID uint) (int64, error)
	ListBySlide(ctx context.Context, tenant string, slideID uint) ([]model.SlideAttachment, error)
	FindByID(ctx context.Context, tenant string, id uint) (*model.SlideAttachment, error)
	Delete(ctx context.Context, tenant string, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new attachment repository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.SlideAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) CountBySlide(ctx context.Context, slideID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SlideAttachment{}).Where("slide_id = ?", slideID).Count(&n).Error
	return n, err
}

func (r *attachmentRepository) ListBySlide(ctx context.Context, tenant string, slideID uint) ([]model.SlideAttachment, error) {
	attachments := []model.SlideAttachment{}
	err := r.db.WithContext(ctx).
		Where("slide_id = ? AND slide_id IN (?)", slideID, r.tenantSlides(tenant)).
		Order(orderClause).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, tenant string, id uint) (*model.SlideAttachment, error) {
	var attachment model.SlideAttachment
	err := r.db.WithContext(ctx).
		Where("id = ? AND slide_id IN (?)", id, r.tenantSlides(tenant)).
		First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, tenant string, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND slide_id IN (?)", id, r.tenantSlides(tenant)).
		Delete(&model.SlideAttachment{})
	return affected(res)
}

// tenantSlides is a subquery selecting the ids of tenant's slides.
func (r *attachmentRepository) tenantSlides(tenant string) *gorm.DB {
	return r.db.Model(&model.Slide{}).Select("id").Where("tenant = ?", tenant)
}
