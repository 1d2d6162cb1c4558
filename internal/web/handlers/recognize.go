package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// RecognizeHandler recognizes uploaded face images and marks attendance
type RecognizeHandler struct {
	session *recognizer.Session
	now     func() time.Time
}

// NewRecognizeHandler creates a new recognize handler. A nil session makes
// every request fail with 503.
func NewRecognizeHandler(session *recognizer.Session, now func() time.Time) *RecognizeHandler {
	if now == nil {
		now = time.Now
	}
	return &RecognizeHandler{session: session, now: now}
}

// RecognizeResponse is the result of a recognition request
type RecognizeResponse struct {
	recognizer.Result
	Marked bool `json:"marked"`
}

// Recognize handles a multipart "file" with one face image.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if h.session == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition unavailable: no known faces loaded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	res, err := h.session.Recognize(r.Context(), data)
	if errors.Is(err, embedding.ErrNoFace) {
		respondError(w, http.StatusUnprocessableEntity, "no face detected")
		return
	}
	if err != nil {
		log.Printf("Recognition failed: %v", err)
		respondError(w, http.StatusBadGateway, "failed to compute embedding")
		return
	}

	marked, err := h.session.Mark(res, h.now())
	if err != nil {
		log.Printf("Failed to mark attendance for %s: %v", sanitizeForLog(res.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to save attendance")
		return
	}

	respondJSON(w, http.StatusOK, RecognizeResponse{Result: res, Marked: marked})
}
