package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveDeleteURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	name := NewName("PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))

	n, err := store.Save(ctx, name, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "/uploads/"+name, store.URL(name))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = store.Save(ctx, name, strings.NewReader("again"))
	assert.Error(t, err, "existing files are never overwritten")

	require.NoError(t, store.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, name), "deleting a missing file is fine")
}

func TestLocal_RejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, store.Delete(context.Background(), name), ErrInvalidName, name)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitWidth(t *testing.T) {
	wide := encodePNG(t, 400, 100)

	out, err := FitWidth(wide, "image/png", 200)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	small := encodePNG(t, 100, 100)
	out, err = FitWidth(small, "image/png", 200)
	require.NoError(t, err)
	assert.Equal(t, small, out)

	out, err = FitWidth([]byte("GIF89a"), "image/gif", 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), out)

	_, err = FitWidth([]byte("not a png"), "image/png", 10)
	assert.Error(t, err)
}

func TestImageExtension(t *testing.T) {
	ext, ok := ImageExtension("image/jpeg")
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	_, ok = ImageExtension("application/pdf")
	assert.False(t, ok)
}
