package recognizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mock"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)

func testTable() *database.Table {
	return database.NewTable("mock", []database.KnownFace{
		{Name: "Alice", Embedding: []float32{1, 0, 0}, ImageCount: 3},
		{Name: "Bob", Embedding: []float32{0, 1, 0}, ImageCount: 2},
	}, testNow)
}

func testEmbedder() *mock.MockEmbedder {
	emb := mock.NewMockEmbedder()
	emb.Set([]byte("alice"), []float32{0.9, 0.1, 0})
	emb.Set([]byte("bob"), []float32{0.1, 0.95, 0.1})
	emb.Set([]byte("stranger"), []float32{0, 0, 1})
	emb.SetError([]byte("broken"), errors.New("model crashed"))
	return emb
}

func newSession(t *testing.T) (*Session, *attendance.Ledger) {
	t.Helper()
	ledger := attendance.New(filepath.Join(t.TempDir(), "attendance.csv"))
	store := mock.NewMockKnownFaceStore(testTable())
	s, err := Open(context.Background(), store, testEmbedder(), ledger, config.MatchingConfig{Threshold: 0.6})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, ledger
}

func TestOpen_NoKnownFaces(t *testing.T) {
	ledger := attendance.New(filepath.Join(t.TempDir(), "attendance.csv"))

	_, err := Open(context.Background(), mock.NewMockKnownFaceStore(nil), testEmbedder(), ledger, config.MatchingConfig{Threshold: 0.6})
	if !errors.Is(err, database.ErrNoKnownFaces) {
		t.Errorf("expected ErrNoKnownFaces, got %v", err)
	}

	empty := database.NewTable("mock", nil, testNow)
	_, err = Open(context.Background(), mock.NewMockKnownFaceStore(empty), testEmbedder(), ledger, config.MatchingConfig{Threshold: 0.6})
	if !errors.Is(err, database.ErrNoKnownFaces) {
		t.Errorf("expected ErrNoKnownFaces for empty table, got %v", err)
	}
}

func TestOpen_StoreError(t *testing.T) {
	store := mock.NewMockKnownFaceStore(nil)
	store.LoadError = errors.New("corrupt file")
	ledger := attendance.New(filepath.Join(t.TempDir(), "attendance.csv"))

	if _, err := Open(context.Background(), store, testEmbedder(), ledger, config.MatchingConfig{Threshold: 0.6}); err == nil {
		t.Error("expected error")
	}
}

func TestRecognizeFace(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	tests := []struct {
		image   string
		name    string
		matched bool
	}{
		{"alice", "Alice", true},
		{"bob", "Bob", true},
		{"stranger", UnknownName, false},
		{"broken", UnknownName, false},
		{"no face here", UnknownName, false},
	}

	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			res := s.RecognizeFace(ctx, []byte(tt.image))
			if res.Name != tt.name || res.Matched != tt.matched {
				t.Errorf("got %+v, want name=%s matched=%v", res, tt.name, tt.matched)
			}
			if tt.matched && res.Similarity <= 0.6 {
				t.Errorf("matched similarity %f must exceed threshold", res.Similarity)
			}
		})
	}

	c := s.Counters()
	if c.Faces != 5 || c.Recognized != 2 || c.Unknown != 1 || c.Errors != 2 {
		t.Errorf("unexpected counters %+v", c)
	}
}

func TestHandleFace_MarksOncePerDay(t *testing.T) {
	s, ledger := newSession(t)
	ctx := context.Background()

	res, marked, err := s.HandleFace(ctx, []byte("alice"), testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !marked || res.Name != "Alice" {
		t.Fatalf("expected Alice to be marked, got %+v marked=%v", res, marked)
	}

	_, marked, err = s.HandleFace(ctx, []byte("alice"), testNow.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if marked {
		t.Error("second recognition on the same day must not mark again")
	}

	_, marked, err = s.HandleFace(ctx, []byte("stranger"), testNow)
	if err != nil || marked {
		t.Errorf("unknown face must not be marked, marked=%v err=%v", marked, err)
	}

	_, marked, err = s.HandleFace(ctx, []byte("alice"), testNow.AddDate(0, 0, 1))
	if err != nil || !marked {
		t.Errorf("expected Alice to be marked on the next day, marked=%v err=%v", marked, err)
	}

	records, err := ledger.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 rows, got %d", len(records))
	}
	if s.MarkedToday(testNow) != 1 {
		t.Errorf("expected 1 marked today, got %d", s.MarkedToday(testNow))
	}
	if s.Counters().Marked != 2 {
		t.Errorf("expected 2 marks, got %d", s.Counters().Marked)
	}
}

func TestHandleFace_LedgerError(t *testing.T) {
	dir := t.TempDir()
	// a directory in place of the CSV file makes every write fail
	path := filepath.Join(dir, "attendance.csv")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := New(testTable(), database.NewLinearMatcher(testTable(), 0.6), testEmbedder(), attendance.New(path))
	if err != nil {
		t.Fatal(err)
	}

	res, marked, err := s.HandleFace(context.Background(), []byte("bob"), testNow)
	if err == nil {
		t.Error("expected ledger error")
	}
	if marked || res.Name != "Bob" {
		t.Errorf("unexpected result %+v marked=%v", res, marked)
	}
}

func TestSessionInfo(t *testing.T) {
	s, _ := newSession(t)

	if s.KnownFaces() != 2 {
		t.Errorf("expected 2 known faces, got %d", s.KnownFaces())
	}
	if names := s.Names(); len(names) != 2 || names[0] != "Alice" {
		t.Errorf("unexpected names %v", names)
	}
	if len(s.ID()) != 36 {
		t.Errorf("unexpected session id %q", s.ID())
	}
}
