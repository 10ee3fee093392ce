package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"moondev-backend/pkg/imaging"

	"github.com/stretchr/testify/assert"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 8 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressProfilePicture(t *testing.T) {
	t.Run("Small picture is re-encoded as JPEG", func(t *testing.T) {
		out, err := imaging.CompressProfilePicture(encodePNG(t, 200, 100))
		assert.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		assert.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 200, cfg.Width)
		assert.Equal(t, 100, cfg.Height)
		assert.LessOrEqual(t, len(out), imaging.MaxEncodedSize)
	})

	t.Run("Oversized picture is scaled down preserving aspect ratio", func(t *testing.T) {
		out, err := imaging.CompressProfilePicture(encodePNG(t, 2160, 1080))
		assert.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		assert.NoError(t, err)
		assert.Equal(t, 1080, cfg.Width)
		assert.Equal(t, 540, cfg.Height)
	})

	t.Run("Portrait orientation scales on the long edge", func(t *testing.T) {
		out, err := imaging.CompressProfilePicture(encodePNG(t, 1080, 2160))
		assert.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		assert.NoError(t, err)
		assert.Equal(t, 540, cfg.Width)
		assert.Equal(t, 1080, cfg.Height)
	})

	t.Run("JPEG input is accepted", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		var buf bytes.Buffer
		assert.NoError(t, jpeg.Encode(&buf, img, nil))

		out, err := imaging.CompressProfilePicture(buf.Bytes())
		assert.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("Garbage input fails to decode", func(t *testing.T) {
		_, err := imaging.CompressProfilePicture([]byte("definitely not an image"))
		assert.Error(t, err)
	})
}
