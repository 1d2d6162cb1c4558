package database

import (
	"context"
)

// KnownFaceReader provides read-only access to the known-face table
type KnownFaceReader interface {
	// Load returns the stored table, or ErrNoKnownFaces when nothing has been stored
	Load(ctx context.Context) (*Table, error)
	// Exists checks if a table has been stored
	Exists(ctx context.Context) (bool, error)
}

// KnownFaceWriter provides write access to the known-face table
type KnownFaceWriter interface {
	KnownFaceReader

	// Save replaces the stored table
	Save(ctx context.Context, table *Table) error

	// Delete removes the stored table. Deleting a missing table is not an error.
	Delete(ctx context.Context) error
}
