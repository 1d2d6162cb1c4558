package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// HNSWIndex wraps the HNSW graph for known-face search.
// Node keys are positions in the table the index was built from.
type HNSWIndex struct {
	graph *hnsw.Graph[int]
	faces []KnownFace
	dim   int
	mu    sync.RWMutex
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{}
}

func newGraph() *hnsw.Graph[int] {
	g := hnsw.NewGraph[int]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build builds the index from the faces of a table.
func (h *HNSWIndex) Build(table *Table) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if table.Len() == 0 {
		h.graph = nil
		h.faces = nil
		return nil
	}

	dim := table.Dim()
	g := newGraph()
	for i, face := range table.Faces {
		if len(face.Embedding) != dim {
			return fmt.Errorf("face %s has dimension %d, expected %d", face.Name, len(face.Embedding), dim)
		}
		g.Add(hnsw.MakeNode(i, face.Embedding))
	}

	h.graph = g
	h.faces = table.Faces
	h.dim = dim
	return nil
}

// Search finds the k nearest faces to the query embedding.
// Returns table positions and their cosine distances.
func (h *HNSWIndex) Search(query []float32, k int) ([]int, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}
	if len(query) != h.dim {
		return nil, nil, fmt.Errorf("query has dimension %d, index has %d", len(query), h.dim)
	}

	neighbors := h.graph.Search(query, k)

	ids := make([]int, len(neighbors))
	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.Key
		distances[i] = CosineDistance(query, n.Value)
	}

	return ids, distances, nil
}

// Face returns the face at table position id.
func (h *HNSWIndex) Face(id int) (KnownFace, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if id < 0 || id >= len(h.faces) {
		return KnownFace{}, false
	}
	return h.faces[id], true
}

// Count returns the number of indexed faces.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.faces)
}

// HNSWMatcher looks up candidates in the graph and re-scores them exactly.
type HNSWMatcher struct {
	index     *HNSWIndex
	threshold float64
}

// NewHNSWMatcher builds an index over table.
func NewHNSWMatcher(table *Table, threshold float64) (*HNSWMatcher, error) {
	index := NewHNSWIndex()
	if err := index.Build(table); err != nil {
		return nil, err
	}
	return &HNSWMatcher{index: index, threshold: threshold}, nil
}

// Match implements Matcher. Candidates are re-scored in table order so ties
// resolve as in the linear matcher.
func (m *HNSWMatcher) Match(query []float32) (Match, bool) {
	n := m.index.Count()
	if n == 0 {
		return Match{}, false
	}
	k := min(HNSWMinCandidates*constants.HNSWCandidateMultiplier, n)

	ids, _, err := m.index.Search(query, k)
	if err != nil {
		return Match{}, false
	}
	sort.Ints(ids)

	candidates := make([]KnownFace, 0, len(ids))
	for _, id := range ids {
		if face, ok := m.index.Face(id); ok {
			candidates = append(candidates, face)
		}
	}
	return bestOf(candidates, query, m.threshold)
}

// Len implements Matcher.
func (m *HNSWMatcher) Len() int {
	return m.index.Count()
}
