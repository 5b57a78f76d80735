package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Dataset column names, in export order.
const (
	ColRawText  = "raw_text"
	ColType     = "type"
	ColNormText = "normtext"
	ColSpanRaw  = "span_raw"
	ColSpanType = "span_type"
	ColSpanNorm = "span_norm"
)

// Columns returns the required dataset header in its canonical order.
// A fresh slice is returned on every call.
func Columns() []string {
	return []string{ColRawText, ColType, ColNormText, ColSpanRaw, ColSpanType, ColSpanNorm}
}

// TypeSeparator joins multiple tags inside a single type cell.
const TypeSeparator = "|"

// RawRow holds the six cells of one data line exactly as read.
// Missing cells are the empty string.
type RawRow struct {
	RawText  string
	Type     string
	NormText string
	SpanRaw  string
	SpanType string
	SpanNorm string
}

// NormalizedRow is a RawRow after text normalization and tag parsing.
type NormalizedRow struct {
	RawText   string
	Types     []string
	NormText  string
	SpanRaw   string
	SpanTypes []string
	SpanNorm  string

	// Corrected is true if any of the four text fields was changed.
	Corrected bool
}

// Row is the canonical six-field form used on the wire: normalized text and
// pipe-joined tag lists.
type Row struct {
	RawText  string `json:"raw_text"`
	Type     string `json:"type"`
	NormText string `json:"normtext"`
	SpanRaw  string `json:"span_raw"`
	SpanType string `json:"span_type"`
	SpanNorm string `json:"span_norm"`
}

// Fields returns the row's cells in canonical column order.
func (r Row) Fields() []string {
	return []string{r.RawText, r.Type, r.NormText, r.SpanRaw, r.SpanType, r.SpanNorm}
}

// ValidationOutcome reports whether a row was accepted. Reason is empty
// when Accepted is true.
type ValidationOutcome struct {
	Accepted bool
	Reason   string
}

// RejectedRow identifies a data line that failed validation.
type RejectedRow struct {
	Line   int    `json:"line"` // 1-based physical line in the source text
	Reason string `json:"reason"`
}

// BatchResult summarizes one pass of the ingestion pipeline.
type BatchResult struct {
	TotalRows     int           `json:"total_rows"`
	ValidRows     int           `json:"valid_rows"`
	CorrectedRows int           `json:"corrected_rows"`
	AcceptedRows  []Row         `json:"-"`
	Rejected      []RejectedRow `json:"rejected,omitempty"`
}

// NoValidRows reports the "nothing to import" condition: the input had data
// rows but none were accepted. It is a reporting condition, not a failure of
// the pipeline itself.
func (b *BatchResult) NoValidRows() bool {
	return len(b.AcceptedRows) == 0
}

// Record is a stored corpus entry. Tag lists are discrete slices here, not
// pipe-joined strings.
type Record struct {
	ID                 uuid.UUID  `json:"id"`
	RawText            string     `json:"rawText"`
	NormalizedText     string     `json:"normalizedText"`
	Types              []string   `json:"types"`
	SpanRawText        string     `json:"spanRawText"`
	SpanNormalizedText string     `json:"spanNormalizedText"`
	SpanTypes          []string   `json:"spanTypes"`
	ImportID           *uuid.UUID `json:"importId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// RecordInput is the editable part of a Record, as submitted by a client.
type RecordInput struct {
	RawText            string   `json:"rawText"`
	NormalizedText     string   `json:"normalizedText"`
	Types              []string `json:"types"`
	SpanRawText        string   `json:"spanRawText"`
	SpanNormalizedText string   `json:"spanNormalizedText"`
}

// ListQuery selects a page of records.
type ListQuery struct {
	Page     int    // 1-based
	Limit    int    // page size
	Type     string // optional tag filter
	SpanOnly bool   // only records with a span annotation
}

// RecordPage is one page of a record listing.
type RecordPage struct {
	Records []Record `json:"records"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// ImportRecord is the history entry written for every bulk import.
type ImportRecord struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"fileName"`
	TotalRows     int       `json:"totalRows"`
	ValidRows     int       `json:"validRows"`
	CorrectedRows int       `json:"correctedRows"`
	Inserted      int64     `json:"inserted"`
	IPAddress     string    `json:"ipAddress,omitempty"`
	UserAgent     string    `json:"userAgent,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store persists corpus records. Implementations must be safe for
// concurrent use.
type Store interface {
	BulkInsert(ctx context.Context, importID uuid.UUID, rows []Row) (int64, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id uuid.UUID, rec Record) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context, q ListQuery) (RecordPage, error)
	ExportRows(ctx context.Context, fn func(Row) error) error
	RecordImport(ctx context.Context, imp ImportRecord) error
	ListImports(ctx context.Context, limit int) ([]ImportRecord, error)
}
