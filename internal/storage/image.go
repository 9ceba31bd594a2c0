package storage

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Accepted image types and their stored extension.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the extension for an accepted mime type.
func ImageExtension(mime string) (string, bool) {
	ext, ok := imageExtensions[mime]
	return ext, ok
}

// FitWidth downscales JPEG and PNG images wider than maxWidth, keeping the
// aspect ratio. Other formats and images that already fit are returned as is.
func FitWidth(data []byte, mime string, maxWidth int) ([]byte, error) {
	var format imaging.Format
	switch mime {
	case "image/jpeg":
		format = imaging.JPEG
	case "image/png":
		format = imaging.PNG
	default:
		return data, nil
	}
	if maxWidth <= 0 {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return data, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
