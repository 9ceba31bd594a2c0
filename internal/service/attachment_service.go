package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"signage/internal/errors"
	"signage/internal/logger"
	"signage/internal/model"
	"signage/internal/repository"
	"signage/internal/storage"
)

// DefaultMaxUploadBytes is the upload limit used when none is configured.
const DefaultMaxUploadBytes = 5 << 20

// UploadInput is one uploaded file.
type UploadInput struct {
	FileName string
	Body     io.Reader
}

// AttachmentService manages images attached to slides.
type AttachmentService interface {
	Upload(ctx context.Context, tenant string, slideID uint, in UploadInput) (*model.SlideAttachment, error)
	List(ctx context.Context, tenant string, slideID uint) ([]model.SlideAttachment, error)
	Delete(ctx context.Context, tenant string, id uint) error
}

type attachmentService struct {
	repo     repository.AttachmentRepository
	slides   repository.SlideRepository
	files    storage.Storage
	notifier DisplayNotifier
	maxBytes int64
	maxWidth int
}

// NewAttachmentService creates a new attachment service. Uploads above
// maxBytes are rejected; JPEG and PNG images wider than maxWidth are scaled down.
func NewAttachmentService(
	repo repository.AttachmentRepository,
	slides repository.SlideRepository,
	files storage.Storage,
	notifier DisplayNotifier,
	maxBytes int64,
	maxWidth int,
) AttachmentService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &attachmentService{
		repo:     repo,
		slides:   slides,
		files:    files,
		notifier: notifierOrNop(notifier),
		maxBytes: maxBytes,
		maxWidth: maxWidth,
	}
}

func (s *attachmentService) Upload(ctx context.Context, tenant string, slideID uint, in UploadInput) (*model.SlideAttachment, error) {
	if _, err := s.slides.FindByID(ctx, tenant, slideID); err != nil {
		return nil, notFound(err, errors.ErrSlideNotFound)
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, errors.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, errors.NewValidationError("image", "file is empty")
	}

	mime := http.DetectContentType(data)
	ext, ok := storage.ImageExtension(mime)
	if !ok {
		return nil, errors.ErrUnsupportedFileType
	}
	data, err = storage.FitWidth(data, mime, s.maxWidth)
	if err != nil {
		return nil, errors.NewValidationError("image", "cannot decode image")
	}

	name := storage.NewName(ext)
	size, err := s.files.Save(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	count, err := s.repo.CountBySlide(ctx, slideID)
	if err != nil {
		s.discard(ctx, name)
		return nil, fmt.Errorf("count attachments: %w", err)
	}

	fileName := in.FileName
	if fileName == "" {
		fileName = name
	}
	attachment := &model.SlideAttachment{
		SlideID:    slideID,
		FileName:   fileName,
		StoredName: name,
		FileURL:    s.files.URL(name),
		FileSize:   size,
		MimeType:   mime,
		Order:      int(count),
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		s.discard(ctx, name)
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	s.notifier.Touch(ctx, tenant)
	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, tenant string, slideID uint) ([]model.SlideAttachment, error) {
	if _, err := s.slides.FindByID(ctx, tenant, slideID); err != nil {
		return nil, notFound(err, errors.ErrSlideNotFound)
	}
	return s.repo.ListBySlide(ctx, tenant, slideID)
}

// Delete removes the attachment row, then its file.
func (s *attachmentService) Delete(ctx context.Context, tenant string, id uint) error {
	attachment, err := s.repo.FindByID(ctx, tenant, id)
	if err != nil {
		return notFound(err, errors.ErrAttachmentNotFound)
	}
	if err := s.repo.Delete(ctx, tenant, id); err != nil {
		return notFound(err, errors.ErrAttachmentNotFound)
	}
	s.notifier.Touch(ctx, tenant)
	if err := s.files.Delete(ctx, attachment.StoredName); err != nil {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}

func (s *attachmentService) discard(ctx context.Context, name string) {
	if err := s.files.Delete(ctx, name); err != nil {
		logger.Warningf("remove orphaned upload %s: %v", name, err)
	}
}
