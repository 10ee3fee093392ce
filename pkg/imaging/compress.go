package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
)

const (
	// MaxEncodedSize is the ceiling a profile picture may occupy after
	// recompression. Pictures still over it are rejected outright.
	MaxEncodedSize = 1 << 20 // 1 MiB

	maxDimension = 1080
	jpegQuality  = 80
)

// ErrTooLarge means the picture exceeded MaxEncodedSize even after
// resizing and re-encoding.
var ErrTooLarge = errors.New("image exceeds size limit after compression")

// CompressProfilePicture decodes the uploaded picture, scales it down
// to at most 1080px on the long edge and re-encodes it as JPEG. The
// result is what gets stored; the original bytes are discarded.
func CompressProfilePicture(data []byte) ([]byte, error) {
	out, err := compress(data, maxDimension, jpegQuality)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxEncodedSize {
		return nil, ErrTooLarge
	}
	return out, nil
}

// compress resizes an image to the specified max dimension and re-encodes as JPEG
func compress(data []byte, maxDim, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > height {
		if width > maxDim {
			newWidth = maxDim
			newHeight = int(float64(height) * float64(maxDim) / float64(width))
		}
	} else {
		if height > maxDim {
			newHeight = maxDim
			newWidth = int(float64(width) * float64(maxDim) / float64(height))
		}
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
