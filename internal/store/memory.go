package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/google/uuid"
)

// Memory is an in-process core.Store. Records live only as long as the
// value; it backs tests and local runs without a database.
type Memory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]core.Record
	order   []uuid.UUID // insertion order, oldest first
	imports []core.ImportRecord
	now     func() time.Time
}

var _ core.Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[uuid.UUID]core.Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// BulkInsert stores every row under importID.
func (m *Memory) BulkInsert(ctx context.Context, importID uuid.UUID, rows []core.Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	for _, row := range rows {
		imp := importID
		rec := core.Record{
			ID:                 newRecordID(),
			RawText:            row.RawText,
			NormalizedText:     row.NormText,
			Types:              textArray(core.ParseTypes(row.Type)),
			SpanRawText:        row.SpanRaw,
			SpanNormalizedText: row.SpanNorm,
			SpanTypes:          textArray(core.ParseTypes(row.SpanType)),
			ImportID:           &imp,
			CreatedAt:          ts,
			UpdatedAt:          ts,
		}
		m.records[rec.ID] = rec
		m.order = append(m.order, rec.ID)
	}
	return int64(len(rows)), nil
}

// Create stores rec under a fresh id.
func (m *Memory) Create(ctx context.Context, rec core.Record) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	rec.ID = newRecordID()
	rec.Types = textArray(slices.Clone(rec.Types))
	rec.SpanTypes = textArray(slices.Clone(rec.SpanTypes))
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return rec, nil
}

// Update replaces the editable fields of an existing record.
func (m *Memory) Update(ctx context.Context, id uuid.UUID, rec core.Record) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.records[id]
	if !ok {
		return core.Record{}, core.ErrRecordNotFound
	}

	cur.RawText = rec.RawText
	cur.NormalizedText = rec.NormalizedText
	cur.Types = textArray(slices.Clone(rec.Types))
	cur.SpanRawText = rec.SpanRawText
	cur.SpanNormalizedText = rec.SpanNormalizedText
	cur.SpanTypes = textArray(slices.Clone(rec.SpanTypes))
	cur.UpdatedAt = m.now()

	m.records[id] = cur
	return cur, nil
}

// Delete removes a record.
func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return core.ErrRecordNotFound
	}
	delete(m.records, id)
	m.order = slices.DeleteFunc(m.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

// Get fetches one record.
func (m *Memory) Get(ctx context.Context, id uuid.UUID) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return core.Record{}, core.ErrRecordNotFound
	}
	return rec, nil
}

// List returns a page of records, newest first.
func (m *Memory) List(ctx context.Context, q core.ListQuery) (core.RecordPage, error) {
	if err := ctx.Err(); err != nil {
		return core.RecordPage{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tag := strings.TrimSpace(q.Type)
	var matched []core.Record
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.records[m.order[i]]
		if tag != "" && !slices.Contains(rec.Types, tag) {
			continue
		}
		if q.SpanOnly && rec.SpanRawText == "" {
			continue
		}
		matched = append(matched, rec)
	}

	page := core.RecordPage{
		Records: []core.Record{},
		Total:   int64(len(matched)),
		Page:    q.Page,
		Limit:   q.Limit,
	}
	start := (q.Page - 1) * q.Limit
	if start < 0 || start >= len(matched) {
		return page, nil
	}
	end := min(start+q.Limit, len(matched))
	page.Records = append(page.Records, matched[start:end]...)
	return page, nil
}

// ExportRows calls fn for every record, oldest first.
func (m *Memory) ExportRows(ctx context.Context, fn func(core.Row) error) error {
	m.mu.RLock()
	rows := make([]core.Row, 0, len(m.order))
	for _, id := range m.order {
		rec := m.records[id]
		rows = append(rows, core.Row{
			RawText:  rec.RawText,
			Type:     core.JoinTypes(rec.Types),
			NormText: rec.NormalizedText,
			SpanRaw:  rec.SpanRawText,
			SpanType: core.JoinTypes(rec.SpanTypes),
			SpanNorm: rec.SpanNormalizedText,
		})
	}
	m.mu.RUnlock()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// RecordImport appends a history entry.
func (m *Memory) RecordImport(ctx context.Context, imp core.ImportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = m.now()
	}
	m.imports = append(m.imports, imp)
	return nil
}

// ListImports returns up to limit history entries, newest first.
func (m *Memory) ListImports(ctx context.Context, limit int) ([]core.ImportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []core.ImportRecord{}
	for i := len(m.imports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.imports[i])
	}
	return out, nil
}
