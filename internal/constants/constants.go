// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Matching constants
const (
	// DefaultMatchThreshold is the minimum cosine similarity for a face to count as a known person.
	// A candidate must score strictly above it.
	DefaultMatchThreshold = 0.6

	// HNSWCandidateMultiplier is how many more candidates the HNSW matcher requests
	// than it returns, before re-scoring them exactly.
	HNSWCandidateMultiplier = 4
)

// Attendance constants
const (
	// StatusPresent is the only status written by the recognizer
	StatusPresent = "Present"

	// DateFormat is the layout of the Date column
	DateFormat = "2006-01-02"

	// TimeFormat is the layout of the Time column
	TimeFormat = "15:04:05"

	// FileTimestampFormat is used in capture, backup and test image file names
	FileTimestampFormat = "20060102_150405"

	// ReportTopAttendees is the number of most frequent attendees in a report
	ReportTopAttendees = 5

	// ReportRecentRecords is the number of trailing records in a report
	ReportRecentRecords = 5
)

// Image constants
const (
	// MaxImageSize is the maximum dimension (width or height) sent to the embedding model
	MaxImageSize = 1280

	// JPEGQuality is used whenever an image is re-encoded
	JPEGQuality = 90
)

// ImageExtensions lists accepted reference image extensions (lowercase, without dot).
var ImageExtensions = []string{"jpg", "jpeg", "png"}
