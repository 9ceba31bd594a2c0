package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/db/dbtest"
	"signage/internal/errors"
	"signage/internal/model"
	"signage/internal/repository"
)

type slideFixture struct {
	svc         SlideService
	attachments AttachmentService
	files       *memStorage
	notifier    *recordingNotifier
}

func newSlideFixture(t *testing.T) *slideFixture {
	t.Helper()
	gormDB := dbtest.New(t)
	slides := repository.NewSlideRepository(gormDB)
	files := newMemStorage()
	notifier := &recordingNotifier{}
	return &slideFixture{
		svc:         NewSlideService(slides, files, notifier),
		attachments: NewAttachmentService(repository.NewAttachmentRepository(gormDB), slides, files, notifier, 1<<20, 1920),
		files:       files,
		notifier:    notifier,
	}
}

func (f *slideFixture) create(t *testing.T, tenant, title string, order *int) *model.Slide {
	t.Helper()
	slide, err := f.svc.Create(context.Background(), tenant, CreateSlideInput{Title: title, Content: "<p>" + title + "</p>", Order: order})
	require.NoError(t, err)
	return slide
}

func slideTitles(slides []model.Slide) []string {
	out := make([]string, 0, len(slides))
	for _, s := range slides {
		out = append(out, s.Title)
	}
	return out
}

func TestSlideService_CreateDefaults(t *testing.T) {
	f := newSlideFixture(t)

	slide := f.create(t, "t1", "first", nil)
	assert.Equal(t, 1, slide.Order)
	assert.Equal(t, model.DefaultSlideDuration, slide.Duration)
	assert.Equal(t, model.DefaultFontSize, slide.FontSize)
	assert.True(t, slide.IsActive)
	assert.False(t, slide.IsArchived)
	assert.Equal(t, "t1", slide.Tenant)
	assert.Equal(t, 1, f.notifier.count())
}

func TestSlideService_CreateAppendsAfterMaxOrder(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	f.create(t, "t1", "one", intPtr(1))
	f.create(t, "t1", "two", intPtr(2))
	f.create(t, "t1", "three", intPtr(3))

	appended := f.create(t, "t1", "appended", nil)
	assert.Equal(t, 4, appended.Order)

	f.create(t, "t1", "front", intPtr(0))
	slides, err := f.svc.ListForAdmin(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"front", "one", "two", "three", "appended"}, slideTitles(slides))
}

func TestSlideService_CreateValidation(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateSlideInput
	}{
		{"blank title", CreateSlideInput{Title: "  ", Content: "x"}},
		{"missing content", CreateSlideInput{Title: "x"}},
		{"zero duration", CreateSlideInput{Title: "x", Content: "x", Duration: intPtr(0)}},
		{"huge font", CreateSlideInput{Title: "x", Content: "x", FontSize: intPtr(500)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, "t1", tt.in)
			assert.ErrorIs(t, err, errors.ErrValidation)
		})
	}
	assert.Zero(t, f.notifier.count())
}

func TestSlideService_Update(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)
	slide, err := f.svc.Create(ctx, "t1", CreateSlideInput{Title: "a", Content: "b", ExpiresAt: &expiry})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "t1", slide.ID, UpdateSlideInput{})
	assert.ErrorIs(t, err, errors.ErrNoFieldsToUpdate)

	_, err = f.svc.Update(ctx, "t2", slide.ID, UpdateSlideInput{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)

	updated, err := f.svc.Update(ctx, "t1", slide.ID, UpdateSlideInput{Title: strPtr("renamed"), ClearExpiresAt: true, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "b", updated.Content, "unsupplied fields are untouched")
	assert.Nil(t, updated.ExpiresAt)
	assert.False(t, updated.IsActive)
}

func TestSlideService_ManualArchiveAndRestore(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)

	_, err := f.svc.Update(ctx, "t1", slide.ID, UpdateSlideInput{IsArchived: boolPtr(true)})
	require.NoError(t, err)

	admin, err := f.svc.ListForAdmin(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, admin)

	archived, err := f.svc.Archived(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, archived.Total)
	assert.Empty(t, archived.Expired)
	assert.Equal(t, []string{"a"}, slideTitles(archived.Manual))

	_, err = f.svc.Update(ctx, "t1", slide.ID, UpdateSlideInput{IsArchived: boolPtr(false)})
	require.NoError(t, err)
	display, err := f.svc.ListForDisplay(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, slideTitles(display))
}

func TestSlideService_ArchivedPartition(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired, err := f.svc.Create(ctx, "t1", CreateSlideInput{Title: "expired", Content: "x", ExpiresAt: &past})
	require.NoError(t, err)
	later, err := f.svc.Create(ctx, "t1", CreateSlideInput{Title: "later", Content: "x", ExpiresAt: &future})
	require.NoError(t, err)
	for _, id := range []uint{expired.ID, later.ID} {
		_, err := f.svc.Update(ctx, "t1", id, UpdateSlideInput{IsArchived: boolPtr(true)})
		require.NoError(t, err)
	}

	archived, err := f.svc.Archived(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, archived.Total)
	assert.Equal(t, []string{"expired"}, slideTitles(archived.Expired))
	assert.Equal(t, []string{"later"}, slideTitles(archived.Manual))
}

func TestSlideService_ReorderWithForeignIDWritesNothing(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	a := f.create(t, "t1", "a", nil)
	b := f.create(t, "t1", "b", nil)
	foreign := f.create(t, "t2", "x", nil)
	before := f.notifier.count()

	err := f.svc.Reorder(ctx, "t1", []model.OrderUpdate{{ID: b.ID, Order: 1}, {ID: a.ID, Order: 2}, {ID: foreign.ID, Order: 3}})
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)
	assert.Equal(t, before, f.notifier.count())

	slides, err := f.svc.ListForAdmin(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slideTitles(slides))

	require.NoError(t, f.svc.Reorder(ctx, "t1", []model.OrderUpdate{{ID: b.ID, Order: 1}, {ID: a.ID, Order: 2}}))
	slides, err = f.svc.ListForAdmin(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, slideTitles(slides))

	assert.ErrorIs(t, f.svc.Reorder(ctx, "t1", nil), errors.ErrInvalidBatch)
}

func TestSlideService_DeleteRemovesAttachmentsAndFiles(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)

	var stored []string
	for i := 0; i < 2; i++ {
		att, err := f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "pic.png", Body: pngReader(t, 10, 10)})
		require.NoError(t, err)
		stored = append(stored, att.StoredName)
	}
	require.Equal(t, 2, f.files.size())

	assert.ErrorIs(t, f.svc.Delete(ctx, "t2", slide.ID), errors.ErrSlideNotFound)
	assert.Equal(t, 2, f.files.size())

	require.NoError(t, f.svc.Delete(ctx, "t1", slide.ID))
	for _, name := range stored {
		assert.False(t, f.files.has(name))
	}
	_, err := f.svc.Get(ctx, "t1", slide.ID)
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)
	remaining, err := f.attachments.List(ctx, "t1", slide.ID)
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)
	assert.Empty(t, remaining)
}

func TestSlideService_DeleteSurvivesFileErrors(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	slide := f.create(t, "t1", "a", nil)
	_, err := f.attachments.Upload(ctx, "t1", slide.ID, UploadInput{FileName: "pic.png", Body: pngReader(t, 10, 10)})
	require.NoError(t, err)

	f.files.deleteErr = assert.AnError
	require.NoError(t, f.svc.Delete(ctx, "t1", slide.ID))
	_, err = f.svc.Get(ctx, "t1", slide.ID)
	assert.ErrorIs(t, err, errors.ErrSlideNotFound)
}

func TestSlideService_DisplayTenantIsolation(t *testing.T) {
	f := newSlideFixture(t)
	ctx := context.Background()
	f.create(t, "t1", "mine", nil)
	f.create(t, "t2", "theirs", nil)

	slides, err := f.svc.ListForDisplay(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, slideTitles(slides))
}
