package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// errInvalidDate is returned for a date parameter that is not YYYY-MM-DD.
const errInvalidDate = "invalid date, expected YYYY-MM-DD"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// dateParam returns the "date" query parameter, or the date of now when it is absent.
func dateParam(r *http.Request, now time.Time) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return now.Format(constants.DateFormat), true
	}
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return "", false
	}
	return date, true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
