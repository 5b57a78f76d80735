package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/JonMunkholm/textnorm/internal/logging"
)

// handleBulkImport imports an uploaded dataset file.
func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ImportDataset(ctx, name, file)
	if errors.Is(err, core.ErrNoValidRows) {
		respondImportError(w, r, err, result)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleBulkPreview runs the pipeline over an upload without storing it.
func (s *Server) handleBulkPreview(w http.ResponseWriter, r *http.Request) {
	file, _, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	batch, err := s.service.PreviewDataset(file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// handleBulkNormalized returns the accepted rows of an upload as a cleaned
// dataset file named "<upload>_normalized.csv".
func (s *Server) handleBulkNormalized(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	// Buffered so a pipeline failure can still produce a JSON error.
	var buf bytes.Buffer
	batch, err := s.service.NormalizeDataset(file, &buf)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setDownloadHeaders(w, normalizedFileName(name))
	w.Header().Set("X-Total-Rows", strconv.Itoa(batch.TotalRows))
	w.Header().Set("X-Valid-Rows", strconv.Itoa(batch.ValidRows))
	w.Header().Set("X-Corrected-Rows", strconv.Itoa(batch.CorrectedRows))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleExport streams every stored record as a dataset file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	setDownloadHeaders(w, fmt.Sprintf("%s_%s.csv", s.cfg.Export.FilePrefix, timestamp))

	n, err := s.service.ExportDataset(r.Context(), w)
	logger := logging.FromContext(r.Context())
	if err != nil {
		// Headers are already sent; the client sees a truncated file.
		logger.Error("export failed", "rows", n, "error", err)
		return
	}
	logger.Info("export completed", "rows", n)
}

// handleImportHistory lists recent imports.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	imports, err := s.service.ImportHistory(r.Context(), parseIntParam(r, "limit", core.DefaultPageSize))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imports)
}
