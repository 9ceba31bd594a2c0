package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"signage/internal/errors"
)

// DisplayNotifier is told about every change that alters what a tenant's
// displays show.
type DisplayNotifier interface {
	Touch(ctx context.Context, tenant string)
}

type nopNotifier struct{}

func (nopNotifier) Touch(context.Context, string) {}

func notifierOrNop(n DisplayNotifier) DisplayNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func utcNow() time.Time { return time.Now().UTC() }

// notFound replaces gorm.ErrRecordNotFound with the domain error.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(field, "is required")
	}
	return nil
}

func requireRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewValidationError(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return nil
}
