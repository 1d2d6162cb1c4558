package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/library"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <name> <path> [path...]",
	Short: "Add reference images of a person",
	Long: `Copy images into the known-faces directory of a person.

Paths may be image files or folders. Folders contribute their images
(non-recursive unless -r is given). Supported formats: jpg, jpeg, png.
An image whose file name already exists for the person is stored under a
prefixed name instead of overwriting it.

Example:
  face-attendance upload "Jan Novák" ~/Pictures/jan.jpg
  face-attendance upload -r Alice ~/Pictures/alice/`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search folders recursively")
}

// collectImages expands paths into image files. Files are taken as given so
// the library can reject unsupported types with a clear error.
func collectImages(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		if recursive {
			err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && library.IsImage(d.Name()) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", path, err)
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && library.IsImage(entry.Name()) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	files, err := collectImages(args[1:], mustGetBool(cmd, "recursive"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No image files found.")
		return nil
	}
	if len(files) == 1 {
		return a.uploadImage(args[0], files[0])
	}

	name, err := library.ValidateName(args[0])
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var failed []string
	for _, file := range files {
		if _, err := a.lib.Upload(name, file); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(file), err))
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	for _, msg := range failed {
		fmt.Printf("Failed: %s\n", msg)
	}
	fmt.Printf("Uploaded %d of %d images for %s\n", len(files)-len(failed), len(files), name)
	if len(failed) == len(files) {
		return fmt.Errorf("no images were uploaded")
	}
	return nil
}

// uploadImage copies one image into the directory of name.
func (a *app) uploadImage(name, path string) error {
	name, err := library.ValidateName(name)
	if err != nil {
		return err
	}
	dst, err := a.lib.Upload(name, path)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Printf("[INFO] Image uploaded successfully for %s (%s)\n", filepath.Base(filepath.Dir(dst)), dst)
	return nil
}
