package attendance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// table is the raw CSV content. Unknown columns are kept so a rewrite does not drop them.
type table struct {
	header []string
	rows   [][]string
	index  map[string]int
}

func newTable(header []string) *table {
	t := &table{header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		// first occurrence wins
		key := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := t.index[key]; !ok {
			t.index[key] = i
		}
	}
	return t
}

func (t *table) field(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) record(row []string) Record {
	return Record{
		Name:   t.field(row, ColumnName),
		Date:   t.field(row, ColumnDate),
		Time:   t.field(row, ColumnTime),
		Status: t.field(row, ColumnStatus),
	}
}

// row lays out rec according to the table header.
func (t *table) row(rec Record) []string {
	out := make([]string, len(t.header))
	values := map[string]string{
		ColumnName:   rec.Name,
		ColumnDate:   rec.Date,
		ColumnTime:   rec.Time,
		ColumnStatus: rec.Status,
	}
	for column, value := range values {
		if i, ok := t.index[column]; ok {
			out[i] = value
		}
	}
	return out
}

func (t *table) records() []Record {
	records := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		records = append(records, t.record(row))
	}
	return records
}

// hasColumns reports whether every column of the default header is present.
func (t *table) hasColumns() bool {
	for _, column := range defaultHeader {
		if _, ok := t.index[column]; !ok {
			return false
		}
	}
	return true
}

// readTable reads the CSV at path. A missing file returns (nil, nil).
func readTable(path string) (*table, error) {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open attendance file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return newTable(defaultHeader), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance header: %w", err)
	}

	t := newTable(header)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read attendance row: %w", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// writeTable replaces the file at path with t, via a temporary file in the same directory.
func writeTable(path string, t *table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".attendance-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(t.rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace attendance file: %w", err)
	}
	return nil
}

// appendRecord appends one record to path, creating the file with a header when needed.
// The row follows the column order of an existing header.
func appendRecord(path string, rec Record) error {
	existing, err := readTable(path)
	if err != nil {
		return err
	}

	if existing != nil && !existing.hasColumns() {
		return fmt.Errorf("attendance file %s is missing required columns %v", path, defaultHeader)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path is from trusted config
	if err != nil {
		return fmt.Errorf("failed to open attendance file for append: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat attendance file: %w", err)
	}

	t := existing
	w := csv.NewWriter(f)
	if t == nil || info.Size() == 0 {
		t = newTable(defaultHeader)
		if err := w.Write(t.header); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	} else if !endsWithNewline(path, info.Size()) {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to terminate last row: %w", err)
		}
	}

	if err := w.Write(t.row(rec)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush row: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close attendance file: %w", err)
	}
	return nil
}

func endsWithNewline(path string, size int64) bool {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return true
	}
	defer f.Close()

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return true
	}
	return last[0] == '\n'
}
