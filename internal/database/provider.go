package database

import (
	"context"
	"errors"
)

var (
	postgresKnownFaceWriter func() KnownFaceWriter
	postgresInitialized     bool
)

// RegisterPostgresBackend registers the PostgreSQL known-face store constructor.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(knownFaces func() KnownFaceWriter) {
	postgresKnownFaceWriter = knownFaces
	postgresInitialized = true
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// GetKnownFaceWriter returns a KnownFaceWriter from the PostgreSQL backend
func GetKnownFaceWriter(ctx context.Context) (KnownFaceWriter, error) {
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresKnownFaceWriter == nil {
		return nil, errors.New("PostgreSQL known face store not registered")
	}
	return postgresKnownFaceWriter(), nil
}
