package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is the class of all request validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidBatch is returned when any entry of a reorder batch is malformed.
	ErrInvalidBatch = errors.New("invalid reorder batch")
	// ErrNoFieldsToUpdate is returned by partial updates with nothing to change.
	ErrNoFieldsToUpdate = errors.New("no fields provided for update")

	// ErrSlideNotFound is returned when a slide does not resolve within the caller's tenant.
	ErrSlideNotFound = errors.New("slide not found")
	// ErrFixedContentNotFound is returned when a fixed content block does not resolve within the caller's tenant.
	ErrFixedContentNotFound = errors.New("fixed content not found")
	// ErrAttachmentNotFound is returned when an attachment does not resolve within the caller's tenant.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrUserNotFound is returned when a user does not resolve within the caller's tenant.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnauthorized is returned for missing, invalid or revoked credentials.
	ErrUnauthorized = errors.New("authentication required")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrForbidden is returned when the caller's role may not perform the operation.
	ErrForbidden = errors.New("admin access required")
	// ErrSelfModification is returned when an admin edits or deletes their own account.
	ErrSelfModification = errors.New("users cannot modify their own account")

	// ErrUsernameTaken is returned when a username is already in use by any tenant.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUnsupportedFileType is returned for uploads that are not accepted images.
	ErrUnsupportedFileType = errors.New("only jpeg, png, gif and webp images are allowed")
	// ErrFileTooLarge is returned for uploads above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidBatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_BATCH")
	case errors.Is(err, ErrNoFieldsToUpdate):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_FIELDS")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrSlideNotFound):
		return NewHTTPError(http.StatusNotFound, ErrSlideNotFound.Error(), "SLIDE_NOT_FOUND")
	case errors.Is(err, ErrFixedContentNotFound):
		return NewHTTPError(http.StatusNotFound, ErrFixedContentNotFound.Error(), "FIXED_CONTENT_NOT_FOUND")
	case errors.Is(err, ErrAttachmentNotFound):
		return NewHTTPError(http.StatusNotFound, ErrAttachmentNotFound.Error(), "ATTACHMENT_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrSelfModification):
		return NewHTTPError(http.StatusForbidden, ErrSelfModification.Error(), "SELF_MODIFICATION")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, ErrUsernameTaken.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrUnsupportedFileType):
		return NewHTTPError(http.StatusUnsupportedMediaType, ErrUnsupportedFileType.Error(), "UNSUPPORTED_FILE_TYPE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error(), "FILE_TOO_LARGE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }
