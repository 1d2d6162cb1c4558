package database

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the known-face table in a single gob file.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file path
func (s *FileStore) Path() string {
	return s.path
}

// Exists implements KnownFaceReader.
func (s *FileStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat embeddings file: %w", err)
	}
	return true, nil
}

// Load implements KnownFaceReader.
func (s *FileStore) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoKnownFaces
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embeddings file: %w", err)
	}

	var table Table
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings file: %w", err)
	}
	if table.Version > currentTableVersion {
		return nil, fmt.Errorf("embeddings file version %d is newer than supported version %d", table.Version, currentTableVersion)
	}
	table.Sort()
	return &table, nil
}

// Save implements KnownFaceWriter. The file is replaced atomically.
func (s *FileStore) Save(_ context.Context, table *Table) error {
	if table.Version == 0 {
		table.Version = currentTableVersion
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(table); err != nil {
		return fmt.Errorf("failed to encode embeddings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".embeddings-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write embeddings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close embeddings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace embeddings file: %w", err)
	}
	return nil
}

// Delete implements KnownFaceWriter.
func (s *FileStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove embeddings file: %w", err)
	}
	return nil
}
