// Package recognizer turns face crops into attendance marks.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// UnknownName is the label of a face without a match
const UnknownName = "Unknown"

// Result is the outcome of recognizing one face
type Result struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	Matched    bool    `json:"matched"`
}

// Counters summarize a session
type Counters struct {
	Faces      int `json:"faces"`
	Recognized int `json:"recognized"`
	Unknown    int `json:"unknown"`
	Errors     int `json:"errors"`
	Marked     int `json:"marked"`
}

// Session matches faces against a known-face table and marks attendance.
// It is safe for concurrent use.
type Session struct {
	id       string
	table    *database.Table
	matcher  database.Matcher
	embedder embedding.Embedder
	ledger   *attendance.Ledger

	mu       sync.Mutex
	counters Counters
}

// New creates a session. It fails with database.ErrNoKnownFaces when the table is empty.
func New(table *database.Table, matcher database.Matcher, embedder embedding.Embedder, ledger *attendance.Ledger) (*Session, error) {
	if table.Len() == 0 || matcher.Len() == 0 {
		return nil, database.ErrNoKnownFaces
	}
	if table.Model != "" && table.Model != embedder.Model() {
		log.Printf("Warning: known faces were computed with %q, embedder is %q", table.Model, embedder.Model())
	}
	return &Session{
		id:       uuid.NewString(),
		table:    table,
		matcher:  matcher,
		embedder: embedder,
		ledger:   ledger,
	}, nil
}

// Open loads the known-face table from store and builds a session with the configured matcher.
func Open(ctx context.Context, store database.KnownFaceReader, embedder embedding.Embedder, ledger *attendance.Ledger, cfg config.MatchingConfig) (*Session, error) {
	table, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNoKnownFaces) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load known faces: %w", err)
	}

	matcher, err := database.NewMatcher(table, cfg.Threshold, cfg.HNSWMinPeople)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}
	return New(table, matcher, embedder, ledger)
}

// ID returns the session identifier used in log lines
func (s *Session) ID() string {
	return s.id
}

// KnownFaces returns the number of people in the table
func (s *Session) KnownFaces() int {
	return s.matcher.Len()
}

// Names returns the known people in name order
func (s *Session) Names() []string {
	return s.table.Names()
}

// MarkedToday returns how many people are marked on the date of now.
// Ledger errors count as zero.
func (s *Session) MarkedToday(now time.Time) int {
	names, err := s.ledger.MarkedToday(now)
	if err != nil {
		return 0
	}
	return len(names)
}

// Counters returns a snapshot of the session counters
func (s *Session) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// Recognize embeds the image and matches it. Embedder errors are returned.
func (s *Session) Recognize(ctx context.Context, image []byte) (Result, error) {
	vec, err := s.embedder.Embed(ctx, image)
	if err != nil {
		s.count(func(c *Counters) { c.Faces++; c.Errors++ })
		return Result{Name: UnknownName}, err
	}

	m, ok := s.matcher.Match(vec)
	if !ok {
		s.count(func(c *Counters) { c.Faces++; c.Unknown++ })
		return Result{Name: UnknownName}, nil
	}
	s.count(func(c *Counters) { c.Faces++; c.Recognized++ })
	return Result{Name: m.Name, Similarity: m.Similarity, Matched: true}, nil
}

// RecognizeFace is Recognize for live sessions: embedder errors are logged
// and the face is reported as unknown.
func (s *Session) RecognizeFace(ctx context.Context, image []byte) Result {
	res, err := s.Recognize(ctx, image)
	if err != nil && !errors.Is(err, embedding.ErrNoFace) && ctx.Err() == nil {
		log.Printf("[%s] Embedding failed: %v", s.id[:8], err)
	}
	return res
}

// Mark records attendance for a matched result. Returns true when a new row was written.
func (s *Session) Mark(res Result, now time.Time) (bool, error) {
	if !res.Matched {
		return false, nil
	}
	marked, err := s.ledger.Mark(res.Name, now)
	if err != nil {
		return false, err
	}
	if marked {
		s.count(func(c *Counters) { c.Marked++ })
		log.Printf("[%s] Attendance marked for %s (%.2f)", s.id[:8], res.Name, res.Similarity)
	}
	return marked, nil
}

// HandleFace recognizes one face and marks attendance for a match.
// Only ledger failures are returned as errors.
func (s *Session) HandleFace(ctx context.Context, image []byte, now time.Time) (Result, bool, error) {
	res := s.RecognizeFace(ctx, image)
	marked, err := s.Mark(res, now)
	return res, marked, err
}

func (s *Session) count(update func(*Counters)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.counters)
}
