package database

import (
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// Match is the known person closest to a query embedding
type Match struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Matcher finds the known person for a query embedding.
type Matcher interface {
	// Match returns the best person whose similarity is strictly above the threshold.
	Match(query []float32) (Match, bool)
	// Len returns the number of known people.
	Len() int
}

// LinearMatcher scores the query against every known face.
type LinearMatcher struct {
	faces     []KnownFace
	threshold float64
}

// NewLinearMatcher creates a matcher over table. The table must be sorted by name.
func NewLinearMatcher(table *Table, threshold float64) *LinearMatcher {
	m := &LinearMatcher{threshold: threshold}
	if table != nil {
		m.faces = table.Faces
	}
	return m
}

// Match implements Matcher.
func (m *LinearMatcher) Match(query []float32) (Match, bool) {
	return bestOf(m.faces, query, m.threshold)
}

// Len implements Matcher.
func (m *LinearMatcher) Len() int {
	return len(m.faces)
}

// bestOf applies the match rule over faces in the given order: a candidate wins
// only when it beats both the current best (starting at 0) and the threshold.
// Ties keep the earlier face.
func bestOf(faces []KnownFace, query []float32, threshold float64) (Match, bool) {
	var best Match
	found := false
	for i := range faces {
		sim := embedding.CosineSimilarity(query, faces[i].Embedding)
		if sim > best.Similarity && sim > threshold {
			best = Match{Name: faces[i].Name, Similarity: sim}
			found = true
		}
	}
	return best, found
}

// NewMatcher picks the HNSW matcher for tables with at least hnswMinPeople
// people and the linear matcher otherwise. hnswMinPeople <= 0 disables HNSW.
func NewMatcher(table *Table, threshold float64, hnswMinPeople int) (Matcher, error) {
	if hnswMinPeople > 0 && table.Len() >= hnswMinPeople {
		return NewHNSWMatcher(table, threshold)
	}
	return NewLinearMatcher(table, threshold), nil
}
