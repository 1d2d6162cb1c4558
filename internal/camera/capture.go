package camera

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/library"
)

// Capture shows the camera feed for name. SPACE saves the current frame into the
// person's directory, ESC or closing the window ends the session.
// Returns the number of saved images.
func Capture(ctx context.Context, device int, lib *library.Library, name string) (int, error) {
	resolved, dir, err := lib.PersonDir(name)
	if err != nil {
		return 0, err
	}

	cam, err := open(device)
	if err != nil {
		return 0, err
	}
	defer cam.Close()

	window := gocv.NewWindow("Face Capture - " + resolved)
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	display := gocv.NewMat()
	defer display.Close()

	fmt.Printf("Capturing images for: %s\n", resolved)
	fmt.Println("Press SPACE to capture image, ESC to exit")

	saved := 0
	for ctx.Err() == nil {
		if ok := cam.Read(&frame); !ok {
			return saved, fmt.Errorf("failed to grab frame from camera %d", device)
		}
		if frame.Empty() {
			continue
		}

		frame.CopyTo(&display)
		putText(&display, "Capturing for: "+resolved, 30, 0.7, colorGreen)
		putText(&display, fmt.Sprintf("Images captured: %d", saved), 60, 0.7, colorGreen)
		putText(&display, "Press SPACE to capture, ESC to exit", 90, 0.5, colorWhite)
		window.IMShow(display)

		switch keyPressed(window.WaitKey(1)) {
		case KeySpace:
			file := library.CaptureFileName(resolved, time.Now(), saved+1)
			if !gocv.IMWrite(filepath.Join(dir, file), frame) {
				fmt.Printf("Failed to save %s\n", file)
				continue
			}
			saved++
			fmt.Printf("Captured image %d: %s\n", saved, file)
		case KeyEsc:
			return saved, nil
		}

		if windowClosed(window) {
			return saved, nil
		}
	}
	return saved, nil
}
