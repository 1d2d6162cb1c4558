package attendance

import (
	"errors"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// ErrNoData is returned when there is no attendance data to operate on.
var ErrNoData = errors.New("no attendance data")

// Column names of the attendance CSV, in the order new files are written.
const (
	ColumnName   = "Name"
	ColumnDate   = "Date"
	ColumnTime   = "Time"
	ColumnStatus = "Status"
)

var defaultHeader = []string{ColumnName, ColumnDate, ColumnTime, ColumnStatus}

// Record is a single attendance row
type Record struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// Timestamp parses Date and Time in the local time zone.
// Returns false when either column does not parse.
func (r Record) Timestamp() (time.Time, bool) {
	ts, err := time.ParseInLocation(constants.DateFormat+" "+constants.TimeFormat, r.Date+" "+r.Time, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Stats summarizes the attendance file
type Stats struct {
	TotalRecords int    `json:"total_records"`
	UniquePeople int    `json:"unique_people"`
	TodayCount   int    `json:"today_count"`
	LatestDate   string `json:"latest_date"`
}

// NameCount is a person with the number of rows recorded for them
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report is the detailed attendance report
type Report struct {
	Stats
	FirstDate    string      `json:"first_date"`
	LastDate     string      `json:"last_date"`
	TopAttendees []NameCount `json:"top_attendees"`
	Recent       []Record    `json:"recent"`
}

// FormatDate formats t as used in the Date column.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// FormatTime formats t as used in the Time column.
func FormatTime(t time.Time) string {
	return t.Format(constants.TimeFormat)
}
