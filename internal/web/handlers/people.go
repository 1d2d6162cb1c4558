package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/library"
)

// PeopleHandler serves the known-faces library
type PeopleHandler struct {
	lib   *library.Library
	store database.KnownFaceReader
}

// NewPeopleHandler creates a new people handler. store may be nil.
func NewPeopleHandler(lib *library.Library, store database.KnownFaceReader) *PeopleHandler {
	return &PeopleHandler{lib: lib, store: store}
}

// PersonResponse is a person in the library
type PersonResponse struct {
	Name     string `json:"name"`
	Images   int    `json:"images"`
	Enrolled bool   `json:"enrolled"`
}

// UploadResponse lists the files stored for a person
type UploadResponse struct {
	Person   string   `json:"person"`
	Uploaded []string `json:"uploaded"`
}

// enrolled returns the names present in the stored known-face table.
func (h *PeopleHandler) enrolled(ctx context.Context) map[string]struct{} {
	names := make(map[string]struct{})
	if h.store == nil {
		return names
	}
	table, err := h.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrNoKnownFaces) {
			log.Printf("Failed to load known faces: %v", err)
		}
		return names
	}
	for _, name := range table.Names() {
		names[name] = struct{}{}
	}
	return names
}

// List returns the people in the library with their image counts.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.lib.People()
	if err != nil {
		log.Printf("Failed to list people: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list people")
		return
	}

	enrolled := h.enrolled(r.Context())
	result := make([]PersonResponse, 0, len(people))
	for _, p := range people {
		_, ok := enrolled[p.Name]
		result = append(result, PersonResponse{Name: p.Name, Images: p.Images, Enrolled: ok})
	}
	respondJSON(w, http.StatusOK, result)
}

// saveUploadedFiles saves multipart files to a temporary directory and returns their paths.
// Each part gets its own subdirectory so parts sharing a file name keep their base name
// without overwriting each other.
func saveUploadedFiles(files []*multipart.FileHeader, tempDir string) ([]string, error) {
	var filePaths []string
	for i, fileHeader := range files {
		if err := func() error {
			file, err := fileHeader.Open()
			if err != nil {
				return fmt.Errorf("failed to open file: %s", fileHeader.Filename)
			}
			defer file.Close()

			partDir := filepath.Join(tempDir, strconv.Itoa(i))
			if err := os.Mkdir(partDir, 0o700); err != nil {
				return errors.New("failed to create temp file")
			}
			tempPath := filepath.Join(partDir, filepath.Base(fileHeader.Filename))
			out, err := os.Create(tempPath) //nolint:gosec // filename sanitized via filepath.Base
			if err != nil {
				return errors.New("failed to create temp file")
			}
			defer out.Close()

			if _, err := io.Copy(out, file); err != nil {
				return errors.New("failed to save file")
			}
			filePaths = append(filePaths, tempPath)
			return nil
		}(); err != nil {
			return nil, err
		}
	}
	return filePaths, nil
}

// storeUploads copies paths into the directory of name and returns the stored paths.
// When one copy fails the images already stored by this call are removed again.
func storeUploads(lib *library.Library, name string, paths []string) ([]string, error) {
	stored := make([]string, 0, len(paths))
	for _, path := range paths {
		dst, err := lib.Upload(name, path)
		if err != nil {
			for _, done := range stored {
				if rmErr := os.Remove(done); rmErr != nil {
					log.Printf("Failed to remove partial upload %s: %v", done, rmErr)
				}
			}
			return nil, fmt.Errorf("failed to store %s: %w", filepath.Base(path), err)
		}
		stored = append(stored, dst)
	}
	return stored, nil
}

// Upload stores the multipart "files" as reference images of the person in the URL.
func (h *PeopleHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name, err := library.ValidateName(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	for _, f := range files {
		if !library.IsImage(f.Filename) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Base(f.Filename)))
			return
		}
	}

	tempDir, err := os.MkdirTemp("", "face-attendance-upload-*")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create temp directory")
		return
	}
	defer os.RemoveAll(tempDir)

	filePaths, err := saveUploadedFiles(files, tempDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored, err := storeUploads(h.lib, name, filePaths)
	if err != nil {
		log.Printf("Failed to upload image for %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	resp := UploadResponse{Person: name, Uploaded: make([]string, 0, len(stored))}
	for _, dst := range stored {
		resp.Person = filepath.Base(filepath.Dir(dst))
		resp.Uploaded = append(resp.Uploaded, filepath.Base(dst))
	}

	log.Printf("Uploaded %d images for %s", len(resp.Uploaded), sanitizeForLog(resp.Person))
	respondJSON(w, http.StatusCreated, resp)
}
