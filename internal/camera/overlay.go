package camera

import (
	"fmt"
	"image"

	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// faceLabel is the text drawn above a face box.
func faceLabel(res recognizer.Result) string {
	if !res.Matched {
		return recognizer.UnknownName
	}
	return fmt.Sprintf("%s (%.2f)", res.Name, res.Similarity)
}

// infoLine is the status line of the recognition window.
func infoLine(known, today int) string {
	return fmt.Sprintf("Known faces: %d | Today: %d", known, today)
}

// labelOrigin places a label just above rect, or inside it at the top edge of the frame.
func labelOrigin(rect image.Rectangle) image.Point {
	y := rect.Min.Y - 10
	if y < 15 {
		y = rect.Min.Y + 20
	}
	return image.Pt(rect.Min.X, y)
}

// clampRect limits rect to a frame of the given size.
func clampRect(rect image.Rectangle, cols, rows int) image.Rectangle {
	return rect.Intersect(image.Rect(0, 0, cols, rows))
}
