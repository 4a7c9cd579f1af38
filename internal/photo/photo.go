// Package photo decodes uploaded images and resizes them into the stored JPEG renditions.
package photo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"tourapi/internal/apperror"
)

// Size is a target rendition.
type Size struct {
	Width  int
	Height int
}

var (
	UserPhoto = Size{Width: 500, Height: 500}
	TourCover = Size{Width: 2000, Height: 1333}
	TourImage = Size{Width: 2000, Height: 1333}
)

// Quality of every encoded rendition.
const Quality = 90

// ContentType of every encoded rendition.
const ContentType = "image/jpeg"

// ErrNotImage is returned for uploads that are not a decodable image.
var ErrNotImage = apperror.BadRequest("Not an image! Please upload only images.")

// Decode limits checked against the image header before any pixel is allocated.
const (
	MaxSide   = 10000
	MaxPixels = 50_000_000
)

// ErrTooLarge is returned for images whose declared dimensions exceed the decode limits.
var ErrTooLarge = apperror.BadRequest("Image is too large! Please upload a smaller image.")

// Resize center-crops r to size and encodes it as JPEG.
func Resize(r io.Reader, size Size) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(err, 400, "BAD_REQUEST", ErrNotImage.Message)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxSide || cfg.Height > MaxSide ||
		int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(err, 400, "BAD_REQUEST", ErrNotImage.Message)
	}

	out := imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(Quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
