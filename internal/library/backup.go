package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// BackupResult describes a completed backup
type BackupResult struct {
	Dir        string `json:"dir"`
	Attendance bool   `json:"attendance"`
	Faces      bool   `json:"faces"`
	Files      int    `json:"files"`
}

// Backup copies the attendance file and the faces tree into a new
// backup_<timestamp> directory under root. Sources that do not exist are skipped.
func (l *Library) Backup(root, attendanceFile string, now time.Time) (*BackupResult, error) {
	dir := filepath.Join(root, "backup_"+now.Format(constants.FileTimestampFormat))
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("backup directory %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	result := &BackupResult{Dir: dir}

	if _, err := os.Stat(attendanceFile); err == nil {
		if err := copyFile(attendanceFile, filepath.Join(dir, filepath.Base(attendanceFile))); err != nil {
			return nil, err
		}
		result.Attendance = true
		result.Files++
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat attendance file: %w", err)
	}

	if l.Exists() {
		n, err := copyTree(l.dir, filepath.Join(dir, filepath.Base(filepath.Clean(l.dir))))
		if err != nil {
			return nil, err
		}
		result.Faces = true
		result.Files += n
	}

	return result, nil
}

// copyFile copies src to dst and keeps the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // paths come from config or the user
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // paths come from config or the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if info, err := in.Stat(); err == nil {
		_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	}
	return nil
}

// copyTree copies the regular files under src into dst and returns how many were copied.
func copyTree(src, dst string) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return copied, nil
}
