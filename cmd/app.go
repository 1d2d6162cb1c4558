package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/embedding/dlib"
	"github.com/kozaktomas/face-attendance/internal/library"
)

// stdin is shared by the menu and all prompts so buffered input is not lost between them.
var stdin = bufio.NewReader(os.Stdin)

// app holds the components every command works with
type app struct {
	cfg    *config.Config
	ledger *attendance.Ledger
	lib    *library.Library
}

func newApp() (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		ledger: attendance.New(cfg.Storage.AttendanceFile),
		lib:    library.New(cfg.Storage.FacesDir),
	}, nil
}

// openStore returns the known-face store: PostgreSQL when DATABASE_URL is set,
// the embeddings file otherwise. The returned func releases the store.
func (a *app) openStore(ctx context.Context) (database.KnownFaceWriter, func(), error) {
	if a.cfg.Database.URL == "" {
		return database.NewFileStore(a.cfg.Storage.EmbeddingsFile), func() {}, nil
	}

	pool, err := postgres.Initialize(&a.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	store, err := database.GetKnownFaceWriter(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, func() { pool.Close() }, nil
}

// storeName describes where known faces are kept.
func (a *app) storeName() string {
	if a.cfg.Database.URL != "" {
		return "PostgreSQL"
	}
	return a.cfg.Storage.EmbeddingsFile
}

// newEmbedder creates the configured embedding backend. The returned func releases it.
func (a *app) newEmbedder() (embedding.Embedder, func(), error) {
	switch a.cfg.Embedding.Backend {
	case "dlib":
		e, err := dlib.New(a.cfg.Embedding.DlibModelsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load dlib models from %s: %w", a.cfg.Embedding.DlibModelsDir, err)
		}
		return e, e.Close, nil
	default:
		return embedding.NewClient(a.cfg.Embedding.URL), func() {}, nil
	}
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// readLine prints prompt and returns the trimmed answer. EOF yields an empty answer.
func readLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func confirmAction(prompt string) bool {
	response, _ := readLine(stdin, prompt)
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

// confirmExact asks for an exact, case-sensitive confirmation word.
func confirmExact(prompt, word string) bool {
	response, _ := readLine(stdin, prompt)
	return response == word
}
