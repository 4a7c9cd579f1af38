package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourapi/internal/apperror"
)

const (
	userID  = "6f0c4a2e-5b1d-4c57-9d3c-2f1e8a7b6c5d"
	otherID = "0b9e2d7a-7c3f-4e1a-8b6d-5a4c3b2a1f0e"
	guideID = "1d2c3b4a-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	tourUID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
)

func pngImage(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func assertStatus(t *testing.T, err error, status int) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected an operational error, got %v", err)
	assert.Equal(t, status, appErr.Status)
	return appErr
}
