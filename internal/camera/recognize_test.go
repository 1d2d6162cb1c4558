package camera

import (
	"image"
	"slices"
	"testing"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

func blank(data []byte) bool {
	return !slices.ContainsFunc(data, func(b byte) bool { return b != 0 })
}

func TestAnnotateFaces_CropsAreTakenBeforeDrawing(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	// overlapping faces, the second one also extends past the frame
	faces := []image.Rectangle{
		image.Rect(10, 10, 70, 70),
		image.Rect(40, 40, 200, 100),
	}

	var seen []image.Rectangle
	annotateFaces(&frame, faces, func(rect image.Rectangle) recognizer.Result {
		region := frame.Region(rect)
		defer region.Close()
		crop := region.Clone()
		defer crop.Close()

		if !blank(crop.ToBytes()) {
			t.Errorf("crop %v contains overlay pixels", rect)
		}
		seen = append(seen, rect)
		return recognizer.Result{Name: "Alice", Similarity: 0.9, Matched: len(seen) == 1}
	})

	want := []image.Rectangle{image.Rect(10, 10, 70, 70), image.Rect(40, 40, 160, 100)}
	if !slices.Equal(seen, want) {
		t.Errorf("recognized %v, want %v", seen, want)
	}
	if blank(frame.ToBytes()) {
		t.Error("expected boxes to be drawn after recognition")
	}
}

func TestAnnotateFaces_SkipsEmptyRects(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 50, 50, gocv.MatTypeCV8UC3)
	defer frame.Close()

	calls := 0
	annotateFaces(&frame, []image.Rectangle{image.Rect(60, 60, 80, 80)}, func(image.Rectangle) recognizer.Result {
		calls++
		return recognizer.Result{Name: recognizer.UnknownName}
	})

	if calls != 0 {
		t.Errorf("expected no recognition for a face outside the frame, got %d calls", calls)
	}
	if !blank(frame.ToBytes()) {
		t.Error("expected nothing drawn")
	}
}
