// Package library manages the known-faces directory: one subdirectory of reference images per person.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

var (
	// ErrEmptyName is returned when a person name is empty or blank.
	ErrEmptyName = errors.New("person name is empty")
	// ErrInvalidName is returned when a person name cannot be used as a directory name.
	ErrInvalidName = errors.New("person name contains a path separator")
	// ErrUnsupportedType is returned for files that are not jpg, jpeg or png images.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Person is one known person with the number of reference images on disk
type Person struct {
	Name   string `json:"name"`
	Images int    `json:"images"`
}

// Library is the known-faces directory tree
type Library struct {
	dir string
}

// New creates a Library rooted at dir. The directory does not have to exist yet.
func New(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the root directory
func (l *Library) Dir() string {
	return l.dir
}

// Exists reports whether the root directory exists.
func (l *Library) Exists() bool {
	info, err := os.Stat(l.dir)
	return err == nil && info.IsDir()
}

// IsImage reports whether path has a supported image extension (case-insensitive).
func IsImage(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return slices.Contains(constants.ImageExtensions, ext)
}

// ValidateName trims name and checks it can be used as a person directory.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// People lists person directories sorted by name, with their image counts.
// A missing root directory yields no people.
func (l *Library) People() ([]Person, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read faces directory: %w", err)
	}

	var people []Person
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		images, err := l.Images(entry.Name())
		if err != nil {
			return nil, err
		}
		people = append(people, Person{Name: entry.Name(), Images: len(images)})
	}
	sort.Slice(people, func(i, j int) bool {
		return people[i].Name < people[j].Name
	})
	return people, nil
}

// Images returns the sorted image paths of one person.
func (l *Library) Images(person string) ([]string, error) {
	dir := filepath.Join(l.dir, person)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory of %s: %w", person, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}

// Resolve maps name to the directory name of an existing person when both
// normalize to the same value, otherwise returns the validated name unchanged.
func (l *Library) Resolve(name string) (string, error) {
	name, err := ValidateName(name)
	if err != nil {
		return "", err
	}

	people, err := l.People()
	if err != nil {
		return "", err
	}
	normalized := NormalizePersonName(name)
	for _, p := range people {
		if p.Name == name {
			return name, nil
		}
	}
	for _, p := range people {
		if NormalizePersonName(p.Name) == normalized {
			return p.Name, nil
		}
	}
	return name, nil
}

// PersonDir resolves name and creates its directory. Returns the resolved name and the directory path.
func (l *Library) PersonDir(name string) (string, string, error) {
	resolved, err := l.Resolve(name)
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(l.dir, resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create directory for %s: %w", resolved, err)
	}
	return resolved, dir, nil
}

// Upload copies the image at src into the directory of name. An existing file
// with the same base name is kept and the copy gets a short random prefix.
// Returns the destination path.
func (l *Library) Upload(name, src string) (string, error) {
	if !IsImage(src) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Base(src))
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to read source image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source %s is a directory", src)
	}

	_, dir, err := l.PersonDir(name)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		dst = filepath.Join(dir, prefix+"_"+filepath.Base(src))
	}

	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CaptureFileName returns the file name of the n-th frame captured for name at now.
func CaptureFileName(name string, now time.Time, n int) string {
	return fmt.Sprintf("%s_%s_%d.jpg", name, now.Format(constants.FileTimestampFormat), n)
}

// Reset removes the whole faces tree. A missing tree is not an error.
func (l *Library) Reset() error {
	if err := os.RemoveAll(l.dir); err != nil {
		return fmt.Errorf("failed to remove faces directory: %w", err)
	}
	return nil
}
