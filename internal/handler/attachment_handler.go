package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"signage/internal/errors"
	"signage/internal/service"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "image"

// AttachmentHandler handles slide image endpoints.
type AttachmentHandler struct {
	attachments   service.AttachmentService
	defaultTenant string
}

// NewAttachmentHandler creates a new attachment handler.
func NewAttachmentHandler(attachments service.AttachmentService, defaultTenant string) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, defaultTenant: defaultTenant}
}

// UploadAttachment godoc
// @Summary Upload slide image
// @Description JPEG, PNG, GIF or WebP up to the configured size. Wide JPEG and PNG images are scaled down.
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param image formData file true "Image file"
// @Success 201 {object} model.SlideAttachment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 415 {object} errors.ErrorResponse
// @Router /slides/{id}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	slideID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		return respondError(c, errors.NewValidationError(uploadField, "no file uploaded"))
	}
	file, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(c.Request().Context(), id.Tenant, slideID, service.UploadInput{
		FileName: fh.Filename,
		Body:     file,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, attachment)
}

// ListAttachments godoc
// @Summary List slide images
// @Tags attachments
// @Produce json
// @Param id path int true "Slide ID"
// @Success 200 {array} model.SlideAttachment
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/{id}/attachments [get]
func (h *AttachmentHandler) ListAttachments(c echo.Context) error {
	slideID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	attachments, err := h.attachments.List(c.Request().Context(), tenantOf(c, h.defaultTenant), slideID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, attachments)
}

// DeleteAttachment godoc
// @Summary Delete slide image
// @Tags attachments
// @Security BearerAuth
// @Param id path int true "Attachment ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /slides/attachments/{id} [delete]
func (h *AttachmentHandler) DeleteAttachment(c echo.Context) error {
	id, err := mustIdentity(c)
	if err != nil {
		return err
	}
	attachmentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.attachments.Delete(c.Request().Context(), id.Tenant, attachmentID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
