package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/constants"
)

// AttendanceHandler serves the attendance ledger
type AttendanceHandler struct {
	ledger *attendance.Ledger
	now    func() time.Time
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(ledger *attendance.Ledger, now func() time.Time) *AttendanceHandler {
	if now == nil {
		now = time.Now
	}
	return &AttendanceHandler{ledger: ledger, now: now}
}

// AttendanceResponse lists the records of one date, or of all dates when Date is empty
type AttendanceResponse struct {
	Date    string              `json:"date,omitempty"`
	Count   int                 `json:"count"`
	Records []attendance.Record `json:"records"`
}

// List returns the records of the requested date (today by default), most recent first.
// With all=1 it returns every record in the file.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		records, err := h.ledger.Records()
		if err != nil {
			log.Printf("Failed to read attendance: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to read attendance")
			return
		}
		respondJSON(w, http.StatusOK, AttendanceResponse{Count: len(records), Records: records})
		return
	}

	date, ok := dateParam(r, h.now())
	if !ok {
		respondError(w, http.StatusBadRequest, errInvalidDate)
		return
	}

	records, err := h.ledger.RecordsOn(date)
	if err != nil {
		log.Printf("Failed to read attendance for %s: %v", date, err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance")
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	attendance.SortByRecency(records)

	respondJSON(w, http.StatusOK, AttendanceResponse{
		Date:    date,
		Count:   len(records),
		Records: records,
	})
}

// Stats returns the attendance summary
func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(h.now().Format(constants.DateFormat))
	if err != nil {
		log.Printf("Failed to compute attendance stats: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Report returns the attendance report, 404 when there are no records.
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Report(h.now().Format(constants.DateFormat))
	if errors.Is(err, attendance.ErrNoData) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("Failed to build attendance report: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance")
		return
	}
	respondJSON(w, http.StatusOK, report)
}
