package web

import (
	"net/http"

	"github.com/JonMunkholm/textnorm/internal/core"
)

// handleListRecords returns a page of records.
// Query: page, limit, type (tag filter), span=1 (records with a span only).
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := core.ListQuery{
		Page:     parseIntParam(r, "page", 1),
		Limit:    parseIntParam(r, "limit", core.DefaultPageSize),
		Type:     r.URL.Query().Get("type"),
		SpanOnly: parseBoolParam(r, "span"),
	}

	page, err := s.service.ListRecords(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleGetRecord returns one record.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rec, err := s.service.GetRecord(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleCreateRecord normalizes and stores a single record.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in core.RecordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.CreateRecord(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleUpdateRecord normalizes and replaces a record.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in core.RecordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.UpdateRecord(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteRecord removes a record.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := parseRecordID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.DeleteRecord(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
