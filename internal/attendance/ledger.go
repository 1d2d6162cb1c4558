// Package attendance manages the attendance CSV file.
package attendance

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Ledger is the attendance CSV file plus the set of names already marked today.
// A single Ledger must own the file within one process.
type Ledger struct {
	path string

	mu     sync.Mutex
	day    string
	marked map[string]struct{}
}

// New creates a Ledger for the CSV file at path. The file is created on the first Mark.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the attendance file path
func (l *Ledger) Path() string {
	return l.path
}

// refresh rebuilds the marked set from the file when the day changed since the last call.
// Must be called with mu held.
func (l *Ledger) refresh(now time.Time) error {
	today := FormatDate(now)
	if l.marked != nil && l.day == today {
		return nil
	}

	marked := make(map[string]struct{})
	t, err := readTable(l.path)
	if err != nil {
		return err
	}
	if t != nil {
		for _, rec := range t.records() {
			if rec.Date == today && rec.Name != "" {
				marked[rec.Name] = struct{}{}
			}
		}
	}

	l.day = today
	l.marked = marked
	return nil
}

// Mark records name as present at now. Returns false without writing when
// name has already been marked on that date.
func (l *Ledger) Mark(name string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(now); err != nil {
		return false, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if _, ok := l.marked[name]; ok {
		return false, nil
	}

	rec := Record{
		Name:   name,
		Date:   FormatDate(now),
		Time:   FormatTime(now),
		Status: constants.StatusPresent,
	}
	if err := appendRecord(l.path, rec); err != nil {
		return false, fmt.Errorf("failed to save attendance for %s: %w", name, err)
	}

	l.marked[name] = struct{}{}
	return true, nil
}

// MarkedToday returns the sorted names marked on the date of now.
func (l *Ledger) MarkedToday(now time.Time) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(now); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(l.marked))
	for name := range l.marked {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Records returns all rows, most recent first. Rows whose Date or Time
// does not parse are placed last in file order.
func (l *Ledger) Records() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := readTable(l.path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return []Record{}, nil
	}

	records := t.records()
	SortByRecency(records)
	return records, nil
}

// RecordsOn returns the rows for date in file order.
func (l *Ledger) RecordsOn(date string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := readTable(l.path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	var records []Record
	for _, rec := range t.records() {
		if rec.Date == date {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ClearDate removes every row dated date and keeps all other rows in their original order.
// Returns the number of removed rows, or ErrNoData when the file is missing or has no rows.
func (l *Ledger) ClearDate(date string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := readTable(l.path)
	if err != nil {
		return 0, err
	}
	if t == nil || len(t.rows) == 0 {
		return 0, ErrNoData
	}

	kept := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		if t.field(row, ColumnDate) != date {
			kept = append(kept, row)
		}
	}
	removed := len(t.rows) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	t.rows = kept
	if err := writeTable(l.path, t); err != nil {
		return 0, err
	}

	if l.day == date {
		l.marked = make(map[string]struct{})
	}
	return removed, nil
}

// Reset removes the attendance file. A missing file is not an error.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove attendance file: %w", err)
	}
	l.marked = nil
	l.day = ""
	return nil
}

// SortByRecency orders records newest first. Records without a valid timestamp go last.
func SortByRecency(records []Record) {
	type keyed struct {
		ts time.Time
		ok bool
	}
	keys := make(map[int]keyed, len(records))
	idx := make([]int, len(records))
	for i := range records {
		idx[i] = i
		ts, ok := records[i].Timestamp()
		keys[i] = keyed{ts: ts, ok: ok}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return ka.ok
		}
		if !ka.ok {
			return false
		}
		return ka.ts.After(kb.ts)
	})

	sorted := make([]Record, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}
