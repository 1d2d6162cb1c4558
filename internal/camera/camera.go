// Package camera runs the OpenCV camera sessions: capture, live recognition and camera test.
package camera

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the camera device cannot be opened.
var ErrUnavailable = errors.New("cannot access camera")

// Key codes returned by WaitKey
const (
	KeyEsc   = 27
	KeySpace = 32
)

var (
	colorGreen = color.RGBA{G: 255, A: 255}
	colorRed   = color.RGBA{R: 255, A: 255}
	colorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Check opens the device and releases it right away.
func Check(device int) bool {
	cam, err := open(device)
	if err != nil {
		return false
	}
	_ = cam.Close()
	return true
}

func open(device int) (*gocv.VideoCapture, error) {
	cam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrUnavailable, device, err)
	}
	if !cam.IsOpened() {
		_ = cam.Close()
		return nil, fmt.Errorf("%w %d", ErrUnavailable, device)
	}
	return cam, nil
}

// keyPressed normalizes a WaitKey result to the low byte, -1 when no key was pressed.
func keyPressed(key int) int {
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// windowClosed reports whether the user closed the window.
func windowClosed(w *gocv.Window) bool {
	return !w.IsOpen() || w.GetWindowProperty(gocv.WindowPropertyVisible) < 1
}

func putText(img *gocv.Mat, text string, y int, scale float64, c color.RGBA) {
	gocv.PutText(img, text, image.Pt(10, y), gocv.FontHersheySimplex, scale, c, 2)
}
