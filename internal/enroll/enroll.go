// Package enroll computes the known-face table from the reference images of every person.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/library"
)

// ErrNoEmbeddings is returned when no image of any person produced an embedding.
var ErrNoEmbeddings = errors.New("no embeddings could be computed")

// Options control a precompute run
type Options struct {
	// Force recomputes even when a table is already stored
	Force bool
	// Progress receives a progress bar, nil disables it
	Progress io.Writer
}

// PersonResult reports how the images of one person were processed
type PersonResult struct {
	Name     string   `json:"name"`
	Images   int      `json:"images"`
	Embedded int      `json:"embedded"`
	Failed   []string `json:"failed,omitempty"`
}

// Result reports a precompute run
type Result struct {
	Skipped bool            `json:"skipped"`
	Table   *database.Table `json:"-"`
	People  []PersonResult  `json:"people"`
}

// Enrolled returns the number of people in the stored table.
func (r *Result) Enrolled() int {
	return r.Table.Len()
}

// Builder computes mean embeddings per person
type Builder struct {
	lib      *library.Library
	embedder embedding.Embedder
	store    database.KnownFaceWriter
	now      func() time.Time
}

// NewBuilder creates a Builder that stores its result in store.
func NewBuilder(lib *library.Library, embedder embedding.Embedder, store database.KnownFaceWriter) *Builder {
	return &Builder{lib: lib, embedder: embedder, store: store, now: time.Now}
}

// Run embeds every image of every person and stores the per-person mean.
// Images that fail are skipped. People without any embedded image are left out.
// When a table exists and opts.Force is false nothing is computed.
func (b *Builder) Run(ctx context.Context, opts Options) (*Result, error) {
	if !opts.Force {
		exists, err := b.store.Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check stored embeddings: %w", err)
		}
		if exists {
			return &Result{Skipped: true}, nil
		}
	}

	people, err := b.lib.People()
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("no people found in %s", b.lib.Dir())
	}

	total := 0
	for _, p := range people {
		total += p.Images
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Computing embeddings"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	result := &Result{}
	var faces []database.KnownFace
	for _, p := range people {
		face, pr, err := b.embedPerson(ctx, p.Name, bar)
		if err != nil {
			return nil, err
		}
		result.People = append(result.People, pr)
		if face != nil {
			faces = append(faces, *face)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if len(faces) == 0 {
		return result, ErrNoEmbeddings
	}

	table := database.NewTable(b.embedder.Model(), faces, b.now())
	if err := b.store.Save(ctx, table); err != nil {
		return result, fmt.Errorf("failed to save embeddings: %w", err)
	}
	result.Table = table
	return result, nil
}

// embedPerson embeds the images of one person. Only context cancellation aborts.
func (b *Builder) embedPerson(ctx context.Context, name string, bar *progressbar.ProgressBar) (*database.KnownFace, PersonResult, error) {
	pr := PersonResult{Name: name}

	images, err := b.lib.Images(name)
	if err != nil {
		return nil, pr, err
	}
	pr.Images = len(images)

	var vectors [][]float32
	for _, path := range images {
		vec, err := b.embedFile(ctx, path)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, pr, ctxErr
			}
			pr.Failed = append(pr.Failed, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		if len(vectors) > 0 && len(vec) != len(vectors[0]) {
			pr.Failed = append(pr.Failed, fmt.Sprintf("%s: embedding dimension %d differs from %d", filepath.Base(path), len(vec), len(vectors[0])))
			continue
		}
		vectors = append(vectors, vec)
	}
	pr.Embedded = len(vectors)

	if len(vectors) == 0 {
		return nil, pr, nil
	}
	return &database.KnownFace{
		Name:       name,
		Embedding:  embedding.Mean(vectors),
		ImageCount: len(vectors),
	}, pr, nil
}

func (b *Builder) embedFile(ctx context.Context, path string) ([]float32, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the faces directory
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return b.embedder.Embed(ctx, data)
}
