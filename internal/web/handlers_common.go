// This file contains shared request parsing helpers used across handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam reports whether a query flag is set ("1", "true", ...).
func parseBoolParam(r *http.Request, name string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && b
}

// parseRecordID reads the {id} path parameter.
func parseRecordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errInvalidRecordID, err)
	}
	return id, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// readUpload returns the "file" part of a multipart dataset upload.
// The caller must close the returned file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	if header.Size > maxSize {
		file.Close()
		return nil, "", fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
	}
	return file, header.Filename, nil
}

// normalizedFileName derives the download name for a cleaned dataset:
// "words.csv" becomes "words_normalized.csv".
func normalizedFileName(upload string) string {
	base := filepath.Base(strings.ReplaceAll(upload, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "dataset"
	}
	return base + "_normalized.csv"
}

// setDownloadHeaders marks the response as a CSV attachment.
func setDownloadHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
