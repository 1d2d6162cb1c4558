package database

import (
	"errors"
	"sort"
	"time"
)

// ErrNoKnownFaces is returned when no known-face table has been stored yet.
var ErrNoKnownFaces = errors.New("no known faces stored")

// KnownFace is the mean embedding of one person
type KnownFace struct {
	Name       string
	Embedding  []float32
	ImageCount int
}

// Table is the full set of known faces produced by one precompute run
type Table struct {
	Version   int
	Model     string
	CreatedAt time.Time
	Faces     []KnownFace
}

const currentTableVersion = 1

// NewTable creates a table sorted by name.
func NewTable(model string, faces []KnownFace, createdAt time.Time) *Table {
	t := &Table{
		Version:   currentTableVersion,
		Model:     model,
		CreatedAt: createdAt,
		Faces:     faces,
	}
	t.Sort()
	return t
}

// Sort orders faces by name so matching is deterministic.
func (t *Table) Sort() {
	sort.SliceStable(t.Faces, func(i, j int) bool {
		return t.Faces[i].Name < t.Faces[j].Name
	})
}

// Len returns the number of known people
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Faces)
}

// Names returns the known names in table order
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Faces))
	for i, f := range t.Faces {
		names[i] = f.Name
	}
	return names
}

// Dim returns the embedding dimension, 0 for an empty table.
func (t *Table) Dim() int {
	if t.Len() == 0 {
		return 0
	}
	return len(t.Faces[0].Embedding)
}
