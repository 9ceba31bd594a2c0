package service

import (
	"context"
	"fmt"
	"time"

	"signage/internal/errors"
	"signage/internal/logger"
	"signage/internal/model"
	"signage/internal/repository"
	"signage/internal/storage"
)

// CreateSlideInput holds the fields accepted when creating a slide.
// Nil pointers take the defaults.
type CreateSlideInput struct {
	Title     string
	Content   string
	Duration  *int
	Order     *int
	IsActive  *bool
	FontSize  *int
	ExpiresAt *time.Time
}

// UpdateSlideInput holds a partial slide update. Only non-nil fields are
// written; ClearExpiresAt removes the expiry.
type UpdateSlideInput struct {
	Title          *string
	Content        *string
	Duration       *int
	Order          *int
	IsActive       *bool
	FontSize       *int
	ExpiresAt      *time.Time
	ClearExpiresAt bool
	IsArchived     *bool
}

// ArchivedSlides is the archive view split by why each slide left rotation.
type ArchivedSlides struct {
	Expired []model.Slide `json:"expired_slides"`
	Manual  []model.Slide `json:"manually_archived_slides"`
	Total   int           `json:"total"`
}

// SlideService manages the slide lifecycle inside one tenant.
type SlideService interface {
	ListForDisplay(ctx context.Context, tenant string) ([]model.Slide, error)
	ListForAdmin(ctx context.Context, tenant string) ([]model.Slide, error)
	Get(ctx context.Context, tenant string, id uint) (*model.Slide, error)
	Create(ctx context.Context, tenant string, in CreateSlideInput) (*model.Slide, error)
	Update(ctx context.Context, tenant string, id uint, in UpdateSlideInput) (*model.Slide, error)
	Delete(ctx context.Context, tenant string, id uint) error
	Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error
	Archived(ctx context.Context, tenant string) (*ArchivedSlides, error)
}

type slideService struct {
	repo     repository.SlideRepository
	files    storage.Storage
	notifier DisplayNotifier
	now      func() time.Time
}

// NewSlideService creates a new slide service.
func NewSlideService(repo repository.SlideRepository, files storage.Storage, notifier DisplayNotifier) SlideService {
	return &slideService{
		repo:     repo,
		files:    files,
		notifier: notifierOrNop(notifier),
		now:      utcNow,
	}
}

func (s *slideService) ListForDisplay(ctx context.Context, tenant string) ([]model.Slide, error) {
	return s.repo.ListDisplay(ctx, tenant, s.now())
}

func (s *slideService) ListForAdmin(ctx context.Context, tenant string) ([]model.Slide, error) {
	return s.repo.ListAdmin(ctx, tenant)
}

func (s *slideService) Get(ctx context.Context, tenant string, id uint) (*model.Slide, error) {
	slide, err := s.repo.FindByID(ctx, tenant, id)
	if err != nil {
		return nil, notFound(err, errors.ErrSlideNotFound)
	}
	return slide, nil
}

// Create stores a new slide. Without an explicit order it is appended after
// the tenant's current last slide.
func (s *slideService) Create(ctx context.Context, tenant string, in CreateSlideInput) (*model.Slide, error) {
	slide := &model.Slide{
		Title:    in.Title,
		Content:  in.Content,
		Duration: model.DefaultSlideDuration,
		IsActive: true,
		FontSize: model.DefaultFontSize,
		Tenant:   tenant,
	}
	if in.Duration != nil {
		slide.Duration = *in.Duration
	}
	if in.IsActive != nil {
		slide.IsActive = *in.IsActive
	}
	if in.FontSize != nil {
		slide.FontSize = *in.FontSize
	}
	if in.ExpiresAt != nil {
		t := in.ExpiresAt.UTC()
		slide.ExpiresAt = &t
	}
	if err := validateSlide(slide); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.SlideRepository) error {
		if in.Order != nil {
			slide.Order = *in.Order
		} else {
			next, err := tx.NextOrder(ctx, tenant)
			if err != nil {
				return fmt.Errorf("next order: %w", err)
			}
			slide.Order = next
		}
		return tx.Create(ctx, slide)
	})
	if err != nil {
		return nil, fmt.Errorf("create slide: %w", err)
	}

	s.notifier.Touch(ctx, tenant)
	return slide, nil
}

func (s *slideService) Update(ctx context.Context, tenant string, id uint, in UpdateSlideInput) (*model.Slide, error) {
	updates, err := slideUpdates(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tenant, id, updates); err != nil {
		return nil, notFound(err, errors.ErrSlideNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	return s.Get(ctx, tenant, id)
}

// Delete removes the slide and its attachments. Files are removed after the
// rows are gone; a file that cannot be removed is logged and left behind.
func (s *slideService) Delete(ctx context.Context, tenant string, id uint) error {
	attachments, err := s.repo.Delete(ctx, tenant, id)
	if err != nil {
		return notFound(err, errors.ErrSlideNotFound)
	}
	for _, a := range attachments {
		if err := s.files.Delete(ctx, a.StoredName); err != nil {
			logger.Warningf("slide %d: remove attachment file %s: %v", id, a.StoredName, err)
		}
	}
	s.notifier.Touch(ctx, tenant)
	return nil
}

func (s *slideService) Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no entries", errors.ErrInvalidBatch)
	}
	if err := s.repo.Reorder(ctx, tenant, updates); err != nil {
		return notFound(err, errors.ErrSlideNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	return nil
}

// Archived partitions archived slides into expired ones and ones archived by hand.
func (s *slideService) Archived(ctx context.Context, tenant string) (*ArchivedSlides, error) {
	slides, err := s.repo.ListArchived(ctx, tenant)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := &ArchivedSlides{Expired: []model.Slide{}, Manual: []model.Slide{}, Total: len(slides)}
	for _, slide := range slides {
		if slide.IsExpired(now) {
			out.Expired = append(out.Expired, slide)
		} else {
			out.Manual = append(out.Manual, slide)
		}
	}
	return out, nil
}

func validateSlide(slide *model.Slide) error {
	if err := requireText("title", slide.Title); err != nil {
		return err
	}
	if err := requireText("content", slide.Content); err != nil {
		return err
	}
	if err := requireRange("duration", slide.Duration, model.MinSlideDuration, model.MaxSlideDuration); err != nil {
		return err
	}
	return requireRange("font_size", slide.FontSize, model.MinFontSize, model.MaxFontSize)
}

func slideUpdates(in UpdateSlideInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		if err := requireText("title", *in.Title); err != nil {
			return nil, err
		}
		updates["title"] = *in.Title
	}
	if in.Content != nil {
		if err := requireText("content", *in.Content); err != nil {
			return nil, err
		}
		updates["content"] = *in.Content
	}
	if in.Duration != nil {
		if err := requireRange("duration", *in.Duration, model.MinSlideDuration, model.MaxSlideDuration); err != nil {
			return nil, err
		}
		updates["duration"] = *in.Duration
	}
	if in.FontSize != nil {
		if err := requireRange("font_size", *in.FontSize, model.MinFontSize, model.MaxFontSize); err != nil {
			return nil, err
		}
		updates["font_size"] = *in.FontSize
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsArchived != nil {
		updates["is_archived"] = *in.IsArchived
	}
	switch {
	case in.ClearExpiresAt:
		updates["expires_at"] = nil
	case in.ExpiresAt != nil:
		updates["expires_at"] = in.ExpiresAt.UTC()
	}
	if len(updates) == 0 {
		return nil, errors.ErrNoFieldsToUpdate
	}
	return updates, nil
}
