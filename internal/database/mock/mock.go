// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// MockKnownFaceStore is an in-memory implementation of database.KnownFaceWriter
type MockKnownFaceStore struct {
	mu    sync.RWMutex
	table *database.Table
	saves int

	// Error injection
	LoadError   error
	ExistsError error
	SaveError   error
	DeleteError error
}

// NewMockKnownFaceStore creates a new mock store, optionally pre-loaded with a table
func NewMockKnownFaceStore(table *database.Table) *MockKnownFaceStore {
	return &MockKnownFaceStore{table: table}
}

// Load returns the stored table
func (m *MockKnownFaceStore) Load(ctx context.Context) (*database.Table, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.table == nil {
		return nil, database.ErrNoKnownFaces
	}
	return m.table, nil
}

// Exists checks whether a table is stored
func (m *MockKnownFaceStore) Exists(ctx context.Context) (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table != nil, nil
}

// Save replaces the stored table
func (m *MockKnownFaceStore) Save(ctx context.Context, table *database.Table) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = table
	m.saves++
	return nil
}

// Delete removes the stored table
func (m *MockKnownFaceStore) Delete(ctx context.Context) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = nil
	return nil
}

// Saves returns how many times Save succeeded
func (m *MockKnownFaceStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Verify interface compliance
var _ database.KnownFaceWriter = (*MockKnownFaceStore)(nil)
