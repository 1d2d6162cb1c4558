package camera

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// TestImageName returns the file name of a camera test snapshot taken at now.
func TestImageName(now time.Time) string {
	return fmt.Sprintf("test_image_%s.jpg", now.Format(constants.FileTimestampFormat))
}

// Test shows the camera feed until a key is pressed. Any key except ESC saves the
// current frame into dir and ends the test. Returns the saved path, empty when
// the test ended without a snapshot.
func Test(ctx context.Context, device int, dir string) (string, error) {
	cam, err := open(device)
	if err != nil {
		return "", err
	}
	defer cam.Close()

	window := gocv.NewWindow("Camera Test")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	display := gocv.NewMat()
	defer display.Close()

	for ctx.Err() == nil {
		if ok := cam.Read(&frame); !ok {
			return "", fmt.Errorf("failed to grab frame from camera %d", device)
		}
		if frame.Empty() {
			continue
		}

		frame.CopyTo(&display)
		putText(&display, "Camera Test - Press any key", 30, 0.7, colorGreen)
		window.IMShow(display)

		key := keyPressed(window.WaitKey(1))
		switch {
		case key == KeyEsc:
			return "", nil
		case key >= 0:
			path := filepath.Join(dir, TestImageName(time.Now()))
			if !gocv.IMWrite(path, frame) {
				return "", fmt.Errorf("failed to save %s", path)
			}
			return path, nil
		}

		if windowClosed(window) {
			return "", nil
		}
	}
	return "", ctx.Err()
}
