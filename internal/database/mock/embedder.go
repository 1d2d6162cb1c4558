package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// MockEmbedder returns canned embeddings keyed by the image bytes
type MockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	errors  map[string]error
	calls   int

	// ModelName is returned by Model
	ModelName string
}

// NewMockEmbedder creates a mock embedder. Unknown images yield embedding.ErrNoFace.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		vectors:   make(map[string][]float32),
		errors:    make(map[string]error),
		ModelName: "mock",
	}
}

// Set registers the embedding returned for image
func (m *MockEmbedder) Set(image []byte, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[string(image)] = vec
}

// SetError registers the error returned for image
func (m *MockEmbedder) SetError(image []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[string(image)] = err
}

// Embed implements embedding.Embedder
func (m *MockEmbedder) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errors[string(imageData)]; ok {
		return nil, err
	}
	if vec, ok := m.vectors[string(imageData)]; ok {
		return vec, nil
	}
	return nil, embedding.ErrNoFace
}

// Model implements embedding.Embedder
func (m *MockEmbedder) Model() string {
	return m.ModelName
}

// Calls returns the number of Embed calls
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Verify interface compliance
var _ embedding.Embedder = (*MockEmbedder)(nil)
