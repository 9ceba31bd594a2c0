package service

import (
	"context"
	"fmt"

	"signage/internal/errors"
	"signage/internal/model"
	"signage/internal/repository"
)

// CreateFixedContentInput holds the fields accepted when creating a block.
type CreateFixedContentInput struct {
	Type     string
	Content  string
	IsActive *bool
	Order    *int
	FontSize *int
}

// UpdateFixedContentInput holds a partial block update.
type UpdateFixedContentInput struct {
	Type     *string
	Content  *string
	IsActive *bool
	Order    *int
	FontSize *int
}

// FixedContentService manages the non-rotating blocks of a tenant's display.
type FixedContentService interface {
	ListForDisplay(ctx context.Context, tenant string) ([]model.FixedContent, error)
	ListForAdmin(ctx context.Context, tenant string) ([]model.FixedContent, error)
	Get(ctx context.Context, tenant string, id uint) (*model.FixedContent, error)
	Create(ctx context.Context, tenant string, in CreateFixedContentInput) (*model.FixedContent, error)
	Update(ctx context.Context, tenant string, id uint, in UpdateFixedContentInput) (*model.FixedContent, error)
	Delete(ctx context.Context, tenant string, id uint) error
	Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error
}

type fixedContentService struct {
	repo     repository.FixedContentRepository
	notifier DisplayNotifier
}

// NewFixedContentService creates a new fixed content service.
func NewFixedContentService(repo repository.FixedContentRepository, notifier DisplayNotifier) FixedContentService {
	return &fixedContentService{repo: repo, notifier: notifierOrNop(notifier)}
}

func (s *fixedContentService) ListForDisplay(ctx context.Context, tenant string) ([]model.FixedContent, error) {
	return s.repo.ListActive(ctx, tenant)
}

func (s *fixedContentService) ListForAdmin(ctx context.Context, tenant string) ([]model.FixedContent, error) {
	return s.repo.ListAll(ctx, tenant)
}

func (s *fixedContentService) Get(ctx context.Context, tenant string, id uint) (*model.FixedContent, error) {
	block, err := s.repo.FindByID(ctx, tenant, id)
	if err != nil {
		return nil, notFound(err, errors.ErrFixedContentNotFound)
	}
	return block, nil
}

func (s *fixedContentService) Create(ctx context.Context, tenant string, in CreateFixedContentInput) (*model.FixedContent, error) {
	if err := requireText("type", in.Type); err != nil {
		return nil, err
	}
	if err := requireText("content", in.Content); err != nil {
		return nil, err
	}

	block := &model.FixedContent{
		Type:     in.Type,
		Content:  in.Content,
		IsActive: true,
		FontSize: model.DefaultFontSize,
		Tenant:   tenant,
	}
	if in.IsActive != nil {
		block.IsActive = *in.IsActive
	}
	if in.FontSize != nil {
		if err := requireRange("font_size", *in.FontSize, model.MinFontSize, model.MaxFontSize); err != nil {
			return nil, err
		}
		block.FontSize = *in.FontSize
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.FixedContentRepository) error {
		if in.Order != nil {
			block.Order = *in.Order
		} else {
			next, err := tx.NextOrder(ctx, tenant)
			if err != nil {
				return fmt.Errorf("next order: %w", err)
			}
			block.Order = next
		}
		return tx.Create(ctx, block)
	})
	if err != nil {
		return nil, fmt.Errorf("create fixed content: %w", err)
	}

	s.notifier.Touch(ctx, tenant)
	return block, nil
}

func (s *fixedContentService) Update(ctx context.Context, tenant string, id uint, in UpdateFixedContentInput) (*model.FixedContent, error) {
	updates := map[string]interface{}{}
	if in.Type != nil {
		if err := requireText("type", *in.Type); err != nil {
			return nil, err
		}
		updates["block_type"] = *in.Type
	}
	if in.Content != nil {
		if err := requireText("content", *in.Content); err != nil {
			return nil, err
		}
		updates["content"] = *in.Content
	}
	if in.FontSize != nil {
		if err := requireRange("font_size", *in.FontSize, model.MinFontSize, model.MaxFontSize); err != nil {
			return nil, err
		}
		updates["font_size"] = *in.FontSize
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if len(updates) == 0 {
		return nil, errors.ErrNoFieldsToUpdate
	}

	if err := s.repo.Update(ctx, tenant, id, updates); err != nil {
		return nil, notFound(err, errors.ErrFixedContentNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	return s.Get(ctx, tenant, id)
}

func (s *fixedContentService) Delete(ctx context.Context, tenant string, id uint) error {
	if err := s.repo.Delete(ctx, tenant, id); err != nil {
		return notFound(err, errors.ErrFixedContentNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	return nil
}

func (s *fixedContentService) Reorder(ctx context.Context, tenant string, updates []model.OrderUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no entries", errors.ErrInvalidBatch)
	}
	if err := s.repo.Reorder(ctx, tenant, updates); err != nil {
		return notFound(err, errors.ErrFixedContentNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	return nil
}
