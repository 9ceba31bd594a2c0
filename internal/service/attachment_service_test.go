package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/errors"
)

func pngReader(t *testing.T, w, h int) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &buf
}

func TestAttachmentService_Upload(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)

	first, err := f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "logo.png", Body: pngReader(t, 4, 4)})
	require.NoError(t, err)
	assert.Equal(t, "logo.png", first.FileName)
	assert.Equal(t, "image/png", first.MimeType)
	assert.Equal(t, 0, first.Order)
	assert.True(t, strings.HasSuffix(first.StoredName, ".png"))
	assert.Equal(t, "/uploads/"+first.StoredName, first.FileURL)
	assert.True(t, f.files.has(first.StoredName))

	second, err := f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "logo2.png", Body: pngReader(t, 4, 4)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	list, err := f.attachments.List(ctx, "t1", slide.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	got, err := f.svc.Get(ctx, "t1", slide.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 2)
}

func TestAttachmentService_UploadRejections(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)

	_, err := f.attachments.Upload(ctx, "t2", slide.ID, UploadInput{Body: pngReader(t, 4, 4)})
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)

	_, err = f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "doc.pdf", Body: strings.NewReader("%PDF-1.4 hello")})
	assert.ErrorIs(t, err, errors.ErrUnsupportedFileType)

	_, err = f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "big.png", Body: bytes.NewReader(make([]byte, (1<<20)+1))})
	assert.ErrorIs(t, err, errors.ErrFileTooLarge)

	_, err = f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "empty.png", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, errors.ErrValidation)

	assert.Zero(t, f.files.size())
}

func TestAttachmentService_Delete(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)
	att, err := f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "a.png", Body: pngReader(t, 4, 4)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.attachments.Delete(ctx, "t2", att.ID), errors.ErrAttachmentNotFound)
	assert.True(t, f.files.has(att.StoredName))

	require.NoError(t, f.attachments.Delete(ctx, "t1", att.ID))
	assert.False(t, f.files.has(att.StoredName))
	assert.ErrorIs(t, f.attachments.Delete(ctx, "t1", att.ID), errors.ErrAttachmentNotFound)
}
