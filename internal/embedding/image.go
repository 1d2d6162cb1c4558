package embedding

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// PrepareImage decodes data, scales it to fit within maxSize keeping the aspect
// ratio and returns it JPEG-encoded. Images already within bounds are re-encoded
// without scaling so the embedding backends always receive JPEG.
func PrepareImage(data []byte, maxSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxSize && height <= maxSize {
		if format == "jpeg" {
			return data, nil
		}
		return encodeJPEG(img)
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(int(float64(height)*float64(maxSize)/float64(width)), 1)
	} else {
		newHeight = maxSize
		newWidth = max(int(float64(width)*float64(maxSize)/float64(height)), 1)
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(resized)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
