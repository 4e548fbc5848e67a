package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadBytes bounds a single image upload.
const maxUploadBytes = 16 << 20

// allowedUploadExts are the accepted image file extensions.
var allowedUploadExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// handleUpload stores a multipart image file and returns the reference to
// use as a mint's image. Files get a fresh name; the client's name only
// contributes its extension.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploadDir == "" {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no upload directory configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("read multipart file: %v", err)})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unsupported file extension %q", ext)})
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.writeError(w, fmt.Errorf("create upload directory: %w", err))
		return
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		s.writeError(w, fmt.Errorf("create upload file: %w", err))
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		s.writeError(w, fmt.Errorf("store upload: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"file":  name,
		"size":  size,
		"image": servedURL(r, name),
	})
}

// servedURL builds the absolute URL under which the stored file is served,
// so the response's image field passes mint image-reference validation as-is.
func servedURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/uploads/" + name
}
