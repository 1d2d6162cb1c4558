package attendance

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMark_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l := New(path)

	ok, err := l.Mark("Alice", at(t, "2024-03-01 09:15:00"))
	if err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if !ok {
		t.Fatal("expected first mark to succeed")
	}

	want := "Name,Date,Time,Status\nAlice,2024-03-01,09:15:00,Present\n"
	if got := readFile(t, path); got != want {
		t.Errorf("unexpected file content:\n%s\nwant:\n%s", got, want)
	}
}

func TestMark_OncePerDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l := New(path)

	if ok, _ := l.Mark("Alice", at(t, "2024-03-01 09:00:00")); !ok {
		t.Fatal("expected first mark to succeed")
	}
	if ok, _ := l.Mark("Alice", at(t, "2024-03-01 17:00:00")); ok {
		t.Error("expected second mark on the same day to be rejected")
	}
	if ok, _ := l.Mark("Bob", at(t, "2024-03-01 17:00:00")); !ok {
		t.Error("expected mark for another person to succeed")
	}
	if ok, _ := l.Mark("Alice", at(t, "2024-03-02 08:00:00")); !ok {
		t.Error("expected mark on the next day to succeed")
	}

	records, err := l.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestMark_ReadsExistingDay(t *testing.T) {
	path := writeCSV(t, "Name,Date,Time,Status\nAlice,2024-03-01,08:00:00,Present\n")
	l := New(path)

	ok, err := l.Mark("Alice", at(t, "2024-03-01 12:00:00"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected name already in the file for today to be rejected")
	}
}

func TestMark_FollowsExistingColumnOrder(t *testing.T) {
	path := writeCSV(t, "Date,Name,Status,Time,Note\n2024-02-28,Bob,Present,10:00:00,late")
	l := New(path)

	if _, err := l.Mark("Alice", at(t, "2024-03-01 09:00:00")); err != nil {
		t.Fatal(err)
	}

	want := "Date,Name,Status,Time,Note\n2024-02-28,Bob,Present,10:00:00,late\n2024-03-01,Alice,Present,09:00:00,\n"
	if got := readFile(t, path); got != want {
		t.Errorf("unexpected file content:\n%q\nwant:\n%q", got, want)
	}
}

func TestMark_MissingColumns(t *testing.T) {
	path := writeCSV(t, "Who,When\nAlice,yesterday\n")
	l := New(path)

	if _, err := l.Mark("Alice", at(t, "2024-03-01 09:00:00")); err == nil {
		t.Error("expected error for file without required columns")
	}
}

func TestMark_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l := New(path)
	now := at(t, "2024-03-01 09:00:00")

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Mark("Alice", now)
			if err != nil {
				t.Error(err)
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	marked := 0
	for ok := range results {
		if ok {
			marked++
		}
	}
	if marked != 1 {
		t.Errorf("expected exactly one successful mark, got %d", marked)
	}
}

func TestMarkedToday(t *testing.T) {
	path := writeCSV(t, "Name,Date,Time,Status\nBob,2024-03-01,08:00:00,Present\nAlice,2024-03-01,08:30:00,Present\nCarol,2024-02-29,08:00:00,Present\n")
	l := New(path)

	names, err := l.MarkedToday(at(t, "2024-03-01 12:00:00"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "Alice,Bob" {
		t.Errorf("expected [Alice Bob], got %v", names)
	}
}

func TestRecords_SortedByRecency(t *testing.T) {
	path := writeCSV(t, `Name,Date,Time,Status
Alice,2024-03-01,09:00:00,Present
Broken,someday,noon,Present
Bob,2024-03-02,08:00:00,Present
Carol,2024-03-01,10:00:00,Present
`)
	l := New(path)

	records, err := l.Records()
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	if got := strings.Join(names, ","); got != "Bob,Carol,Alice,Broken" {
		t.Errorf("unexpected order: %s", got)
	}
}

func TestRecords_MissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing.csv"))

	records, err := l.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected an empty slice, got %#v", records)
	}
}

func TestClearDate_KeepsOtherDays(t *testing.T) {
	path := writeCSV(t, `Name,Date,Time,Status
Alice,2024-02-29,09:00:00,Present
Bob,2024-03-01,08:00:00,Present
Carol,2024-02-28,10:00:00,Present
Alice,2024-03-01,09:00:00,Present
`)
	l := New(path)

	removed, err := l.ClearDate("2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed rows, got %d", removed)
	}

	want := "Name,Date,Time,Status\nAlice,2024-02-29,09:00:00,Present\nCarol,2024-02-28,10:00:00,Present\n"
	if got := readFile(t, path); got != want {
		t.Errorf("unexpected file content:\n%s\nwant:\n%s", got, want)
	}
}

func TestClearDate_AllowsMarkingAgain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	l := New(path)
	now := at(t, "2024-03-01 09:00:00")

	if _, err := l.Mark("Alice", now); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ClearDate("2024-03-01"); err != nil {
		t.Fatal(err)
	}

	ok, err := l.Mark("Alice", now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected mark after clearing today to succeed")
	}
}

func TestClearDate_NoData(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file"},
		{name: "header only", content: ptr("Name,Date,Time,Status\n")},
		{name: "empty file", content: ptr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "attendance.csv")
			if tt.content != nil {
				path = writeCSV(t, *tt.content)
			}
			l := New(path)

			_, err := l.ClearDate("2024-03-01")
			if !errors.Is(err, ErrNoData) {
				t.Errorf("expected ErrNoData, got %v", err)
			}
		})
	}
}

func TestClearDate_NothingForDate(t *testing.T) {
	content := "Name,Date,Time,Status\nAlice,2024-02-29,09:00:00,Present\n"
	path := writeCSV(t, content)
	l := New(path)

	removed, err := l.ClearDate("2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed rows, got %d", removed)
	}
	if got := readFile(t, path); got != content {
		t.Errorf("file should be untouched, got:\n%s", got)
	}
}

func TestReset(t *testing.T) {
	path := writeCSV(t, "Name,Date,Time,Status\nAlice,2024-02-29,09:00:00,Present\n")
	l := New(path)

	if err := l.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected attendance file to be removed, got %v", err)
	}
	if err := l.Reset(); err != nil {
		t.Errorf("second reset should not fail: %v", err)
	}
}

func ptr(s string) *string {
	return &s
}
