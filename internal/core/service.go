package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/textnorm/internal/config"
	"github.com/JonMunkholm/textnorm/internal/khmer"
	"github.com/JonMunkholm/textnorm/internal/logging"
	"github.com/google/uuid"
)

// Listing bounds applied by ListRecords.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Service is the entry point for corpus operations. It runs the ingestion
// pipeline and relays store results and failures to its caller unmodified.
type Service struct {
	store   Store
	cfg     *config.Config
	limiter *ImportLimiter
}

// NewService creates a Service backed by store.
func NewService(store Store, cfg *config.Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: store is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("new service: config is nil")
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}, nil
}

// ImportResult summarizes a completed bulk import.
type ImportResult struct {
	ImportID      uuid.UUID     `json:"import_id"`
	FileName      string        `json:"file_name"`
	TotalRows     int           `json:"total_rows"`
	ValidRows     int           `json:"valid_rows"`
	CorrectedRows int           `json:"corrected_rows"`
	Inserted      int64         `json:"inserted"`
	Rejected      []RejectedRow `json:"rejected,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// ImportDataset reads a dataset file, runs the pipeline and bulk-inserts
// the accepted rows.
//
// Header failures are returned before anything is stored. When every row
// is rejected the partially filled result is returned together with
// ErrNoValidRows so callers can still report the counts.
func (s *Service) ImportDataset(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	start := time.Now()
	importID := uuid.New()
	logger := logging.WithFields(ctx, "import_id", importID, "file", fileName)
	ctx = logging.NewContext(ctx, logger)
	logger.Info("import started")

	text, err := ReadDataset(r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, err
	}

	batch, err := ProcessDataset(text)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}

	result := &ImportResult{
		ImportID:      importID,
		FileName:      fileName,
		TotalRows:     batch.TotalRows,
		ValidRows:     batch.ValidRows,
		CorrectedRows: batch.CorrectedRows,
		Rejected:      batch.Rejected,
	}

	if batch.NoValidRows() {
		result.Duration = time.Since(start)
		logger.Warn("import has no valid rows", "total_rows", batch.TotalRows)
		return result, ErrNoValidRows
	}

	inserted, err := s.store.BulkInsert(ctx, importID, batch.AcceptedRows)
	if err != nil {
		return nil, fmt.Errorf("bulk insert: %w", err)
	}
	result.Inserted = inserted
	result.Duration = time.Since(start)

	err = s.store.RecordImport(ctx, ImportRecord{
		ID:            importID,
		FileName:      fileName,
		TotalRows:     result.TotalRows,
		ValidRows:     result.ValidRows,
		CorrectedRows: result.CorrectedRows,
		Inserted:      inserted,
		IPAddress:     IPAddressFromContext(ctx),
		UserAgent:     UserAgentFromContext(ctx),
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to record import history", "error", err)
	}

	logger.Info("import completed",
		"total_rows", result.TotalRows,
		"valid_rows", result.ValidRows,
		"corrected_rows", result.CorrectedRows,
		"inserted", inserted,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// PreviewDataset runs the pipeline without touching the store.
func (s *Service) PreviewDataset(r io.Reader) (*BatchResult, error) {
	text, err := ReadDataset(r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return ProcessDataset(text)
}

// NormalizeDataset runs the pipeline and writes the accepted rows to w as a
// normalized dataset file. Nothing is written when no row is accepted.
func (s *Service) NormalizeDataset(r io.Reader, w io.Writer) (*BatchResult, error) {
	batch, err := s.PreviewDataset(r)
	if err != nil {
		return nil, err
	}
	if batch.NoValidRows() {
		return batch, ErrNoValidRows
	}
	if err := WriteDataset(w, batch.AcceptedRows); err != nil {
		return batch, fmt.Errorf("write dataset: %w", err)
	}
	return batch, nil
}

// ExportDataset streams every stored record to w in dataset format and
// returns the number of rows written.
func (s *Service) ExportDataset(ctx context.Context, w io.Writer) (int, error) {
	dw := NewDatasetWriter(w)
	n := 0
	err := s.store.ExportRows(ctx, func(row Row) error {
		n++
		return dw.Write(row)
	})
	if err != nil {
		return n, fmt.Errorf("export: %w", err)
	}
	if err := dw.Flush(); err != nil {
		return n, fmt.Errorf("export: %w", err)
	}
	return n, nil
}

// Record field names used in RecordResult.Corrected.
const (
	FieldRawText            = "rawText"
	FieldNormalizedText     = "normalizedText"
	FieldSpanRawText        = "spanRawText"
	FieldSpanNormalizedText = "spanNormalizedText"
)

// RecordResult is a saved record plus which of its text fields were
// rewritten by normalization.
type RecordResult struct {
	Record    Record          `json:"record"`
	Corrected map[string]bool `json:"corrected"`
}

// CreateRecord normalizes, validates and stores a single record.
func (s *Service) CreateRecord(ctx context.Context, in RecordInput) (*RecordResult, error) {
	rec, corrected, err := PrepareRecord(in)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	logging.FromContext(ctx).Info("record created", "id", saved.ID)
	return &RecordResult{Record: saved, Corrected: corrected}, nil
}

// UpdateRecord normalizes, validates and replaces an existing record.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, in RecordInput) (*RecordResult, error) {
	rec, corrected, err := PrepareRecord(in)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Update(ctx, id, rec)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	logging.FromContext(ctx).Info("record updated", "id", id)
	return &RecordResult{Record: saved, Corrected: corrected}, nil
}

// DeleteRecord removes a record.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	logging.FromContext(ctx).Info("record deleted", "id", id)
	return nil
}

// GetRecord returns one record.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns a page of records. Page and limit are clamped to
// sane bounds.
func (s *Service) ListRecords(ctx context.Context, q ListQuery) (RecordPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Type = strings.TrimSpace(q.Type)

	page, err := s.store.List(ctx, q)
	if err != nil {
		return RecordPage{}, fmt.Errorf("list records: %w", err)
	}
	return page, nil
}

// ImportHistory returns the most recent imports, newest first.
func (s *Service) ImportHistory(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	imports, err := s.store.ListImports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("import history: %w", err)
	}
	return imports, nil
}

// TextPreview is the live normalization preview for a single string.
type TextPreview struct {
	Text      string          `json:"text"`
	Corrected bool            `json:"corrected"`
	Khmer     bool            `json:"khmer"`
	Segments  []khmer.Segment `json:"segments"`
}

// PreviewText normalizes s and splits the result into highlightable
// segments.
func (s *Service) PreviewText(text string) TextPreview {
	r := khmer.Normalize(text)
	segments := khmer.CollectSegments(r.Segments())
	if segments == nil {
		segments = []khmer.Segment{}
	}
	return TextPreview{
		Text:      r.Text,
		Corrected: r.Corrected,
		Khmer:     khmer.ContainsKhmer(text),
		Segments:  segments,
	}
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}
