// Package constants provides shared constants used across the codebase.
package constants

// HTTP handler constants
const (
	// MaxUploadSize is the maximum image upload size in bytes (20MB)
	MaxUploadSize = 20 << 20

	// RequestTimeoutSeconds bounds a single API request, including the embedding call
	RequestTimeoutSeconds = 60
)
