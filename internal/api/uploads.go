package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/textutil"
	"reelsmith/internal/workfolder"
)

// reservedNames are files the pipeline owns inside a work folder.
var reservedNames = map[string]struct{}{
	workfolder.DescriptionFile: {},
	workfolder.AudioFile:       {},
}

// newUploadHandler mints a time-based identifier for the next upload.
func newUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewUUID()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to mint id", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, NewUploadResponse{ID: id.String()})
	}
}

// createUploadHandler stores a multipart upload as a work folder: every file
// part under its sanitized name plus the "text" field as the description.
func createUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.WithContext(r.Context(), cfg.Logger)

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "upload too large", "TOO_LARGE")
				return
			}
			WriteError(w, http.StatusBadRequest, "invalid multipart form", "BAD_REQUEST")
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		rawID := r.FormValue("uuid")
		id := textutil.SecureFilename(rawID)
		if id == "" {
			WriteError(w, http.StatusBadRequest, "uuid is required", "BAD_REQUEST")
			return
		}

		files := collectFiles(r.MultipartForm)
		if len(files) == 0 {
			WriteError(w, http.StatusBadRequest, "no files uploaded", "BAD_REQUEST")
			return
		}
		_, hasText := r.MultipartForm.Value["text"]
		description := r.FormValue("text")

		stored, err := storeUpload(cfg.UploadDir, id, files, description, hasText)
		if err != nil {
			logging.WarnWithContext(logger, "upload rejected", "upload_failed",
				logging.String(logging.FieldFolderID, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.upload_dir permissions and free space"),
				logging.String(logging.FieldImpact, "client must resend the upload"),
			)
			WriteError(w, http.StatusInternalServerError, "failed to store upload", "INTERNAL_ERROR")
			return
		}

		described := workfolder.New(cfg.UploadDir, id).HasDescription()
		logger.Info("upload stored",
			logging.String(logging.FieldFolderID, id),
			logging.Int("files", len(stored)),
			logging.Bool("has_description", described),
			logging.String(logging.FieldEventType, "upload_stored"),
		)
		if cfg.Wake != nil {
			cfg.Wake()
		}
		WriteJSON(w, http.StatusCreated, UploadResponse{
			ID:             id,
			Files:          stored,
			HasDescription: described,
		})
	}
}

// namedPart is a file part paired with its sanitized target name.
type namedPart struct {
	name   string
	header *multipart.FileHeader
}

func collectFiles(form *multipart.Form) []namedPart {
	if form == nil {
		return nil
	}
	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []namedPart
	seen := make(map[string]struct{})
	for _, key := range keys {
		for _, header := range form.File[key] {
			name := textutil.SecureFilename(header.Filename)
			if name == "" {
				continue
			}
			if _, reserved := reservedNames[strings.ToLower(name)]; reserved {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			parts = append(parts, namedPart{name: name, header: header})
		}
	}
	return parts
}

// storeUpload writes parts into <uploadDir>/<id>. A new folder is assembled
// under a hidden name and renamed into place so the queue processor never
// lists it half-written. A new folder always gets a description file, even an
// empty one. For an existing folder the files are written in place and the
// description is replaced, last, only when the form carried a text field.
func storeUpload(uploadDir, id string, parts []namedPart, description string, hasText bool) ([]string, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	dest := filepath.Join(uploadDir, id)

	if _, err := os.Stat(dest); err == nil {
		return writeParts(dest, parts, description, hasText)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat folder: %w", err)
	}

	tmp, err := os.MkdirTemp(uploadDir, "."+id+".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create upload staging: %w", err)
	}
	stored, err := writeParts(tmp, parts, description, true)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("chmod upload folder: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("publish upload folder: %w", err)
	}
	return stored, nil
}

func writeParts(dir string, parts []namedPart, description string, writeDescription bool) ([]string, error) {
	stored := make([]string, 0, len(parts))
	for _, part := range parts {
		if err := writePart(filepath.Join(dir, part.name), part.header); err != nil {
			return nil, err
		}
		stored = append(stored, part.name)
	}
	if writeDescription {
		if _, err := fileutil.WriteAtomic(filepath.Join(dir, workfolder.DescriptionFile), strings.NewReader(description), 0o644); err != nil {
			return nil, fmt.Errorf("write description: %w", err)
		}
	}
	return stored, nil
}

func writePart(path string, header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("open part %s: %w", header.Filename, err)
	}
	defer src.Close()
	if _, err := fileutil.WriteAtomic(path, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
