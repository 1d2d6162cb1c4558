package camera

import (
	"context"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// Cascade detection parameters
const (
	detectScaleFactor  = 1.1
	detectMinNeighbors = 4
)

// Recognize runs live recognition until ESC, window close or ctx cancellation.
// Every detected face is passed to the session, which marks attendance for matches.
// Returns the number of people marked today when the session ends.
func Recognize(ctx context.Context, device int, cascadePath string, session *recognizer.Session) (int, error) {
	classifier := gocv.NewCascadeClassifier()
	defer classifier.Close()
	if !classifier.Load(cascadePath) {
		return 0, fmt.Errorf("failed to load cascade file %s", cascadePath)
	}

	cam, err := open(device)
	if err != nil {
		return 0, err
	}
	defer cam.Close()

	window := gocv.NewWindow("Face Recognition Attendance System")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	for ctx.Err() == nil {
		if ok := cam.Read(&frame); !ok || frame.Empty() {
			if windowClosed(window) || keyPressed(window.WaitKey(10)) == KeyEsc {
				break
			}
			continue
		}

		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
		faces := classifier.DetectMultiScaleWithParams(gray, detectScaleFactor, detectMinNeighbors, 0, image.Point{}, image.Point{})

		now := time.Now()
		annotateFaces(&frame, faces, func(rect image.Rectangle) recognizer.Result {
			return recognizeRegion(ctx, session, frame, rect, now)
		})

		putText(&frame, infoLine(session.KnownFaces(), session.MarkedToday(now)), frame.Rows()-15, 0.6, colorWhite)
		window.IMShow(frame)

		if keyPressed(window.WaitKey(10)) == KeyEsc || windowClosed(window) {
			break
		}
	}

	today := session.MarkedToday(time.Now())
	fmt.Printf("Total attendance today: %d\n", today)
	return today, nil
}

// faceBox is a detected face with its recognition result
type faceBox struct {
	rect image.Rectangle
	res  recognizer.Result
}

// annotateFaces recognizes every face on the unmodified frame first and only
// then draws the boxes and labels, so no crop contains another face's overlay.
func annotateFaces(frame *gocv.Mat, faces []image.Rectangle, recognize func(image.Rectangle) recognizer.Result) {
	boxes := make([]faceBox, 0, len(faces))
	for _, rect := range faces {
		rect = clampRect(rect, frame.Cols(), frame.Rows())
		if rect.Empty() {
			continue
		}
		boxes = append(boxes, faceBox{rect: rect, res: recognize(rect)})
	}

	for _, b := range boxes {
		c := colorRed
		if b.res.Matched {
			c = colorGreen
		}
		gocv.Rectangle(frame, b.rect, c, 2)
		gocv.PutText(frame, faceLabel(b.res), labelOrigin(b.rect), gocv.FontHersheySimplex, 0.6, c, 2)
	}
}

// recognizeRegion encodes the face crop as JPEG and hands it to the session.
// Encoding and ledger failures are printed and the face is shown as unknown or matched.
func recognizeRegion(ctx context.Context, session *recognizer.Session, frame gocv.Mat, rect image.Rectangle, now time.Time) recognizer.Result {
	region := frame.Region(rect)
	defer region.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, region)
	if err != nil {
		fmt.Printf("Failed to encode face: %v\n", err)
		return recognizer.Result{Name: recognizer.UnknownName}
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close
	data := append([]byte(nil), buf.GetBytes()...)

	res, marked, err := session.HandleFace(ctx, data, now)
	if err != nil {
		fmt.Printf("Could not save attendance: %v\n", err)
	}
	if marked {
		fmt.Printf("Attendance marked for %s at %s\n", res.Name, now.Format(constants.TimeFormat))
	}
	return res
}
