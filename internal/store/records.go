package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/JonMunkholm/textnorm/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const recordColumns = "id, raw_text, normalized_text, types, span_raw_text, span_normalized_text, span_types, import_id, created_at, updated_at"

// copyColumns is the column order used by BulkInsert.
var copyColumns = []string{
	"id", "raw_text", "normalized_text", "types",
	"span_raw_text", "span_normalized_text", "span_types", "import_id",
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// BulkInsert copies accepted rows into the records table in one
// transaction. Either every row is stored or none is.
func (p *Postgres) BulkInsert(ctx context.Context, importID uuid.UUID, rows []core.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return copyValues(importID, rows[i]), nil
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{recordsTable}, copyColumns, source)
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(ctx).Debug("rows copied", "table", recordsTable, "rows", n)
	return n, nil
}

// copyValues converts a canonical row into CopyFrom values in copyColumns
// order. Pipe-joined tag cells become text arrays. Ids are time-ordered so
// rows sharing one created_at keep their file order under ORDER BY id.
func copyValues(importID uuid.UUID, row core.Row) []any {
	return []any{
		toPgUUID(newRecordID()),
		row.RawText,
		row.NormText,
		textArray(core.ParseTypes(row.Type)),
		row.SpanRaw,
		row.SpanNorm,
		textArray(core.ParseTypes(row.SpanType)),
		toPgUUID(importID),
	}
}

// Create inserts a new record with a fresh id.
func (p *Postgres) Create(ctx context.Context, rec core.Record) (core.Record, error) {
	query := fmt.Sprintf(`INSERT INTO %s
		(id, raw_text, normalized_text, types, span_raw_text, span_normalized_text, span_types, import_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, recordsTable, recordColumns)

	row := p.db.QueryRow(ctx, query,
		toPgUUID(newRecordID()),
		rec.RawText,
		rec.NormalizedText,
		textArray(rec.Types),
		rec.SpanRawText,
		rec.SpanNormalizedText,
		textArray(rec.SpanTypes),
		optionalPgUUID(rec.ImportID),
	)
	return scanRecord(row)
}

// Update replaces the editable fields of an existing record.
func (p *Postgres) Update(ctx context.Context, id uuid.UUID, rec core.Record) (core.Record, error) {
	query := fmt.Sprintf(`UPDATE %s SET
		raw_text = $2,
		normalized_text = $3,
		types = $4,
		span_raw_text = $5,
		span_normalized_text = $6,
		span_types = $7,
		updated_at = now()
		WHERE id = $1
		RETURNING %s`, recordsTable, recordColumns)

	row := p.db.QueryRow(ctx, query,
		toPgUUID(id),
		rec.RawText,
		rec.NormalizedText,
		textArray(rec.Types),
		rec.SpanRawText,
		rec.SpanNormalizedText,
		textArray(rec.SpanTypes),
	)
	updated, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, core.ErrRecordNotFound
	}
	return updated, err
}

// Delete removes a record.
func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", recordsTable), toPgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// Get fetches one record.
func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (core.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", recordColumns, recordsTable)
	rec, err := scanRecord(p.db.QueryRow(ctx, query, toPgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, core.ErrRecordNotFound
	}
	return rec, err
}

// listWhere builds the filter clause for a listing.
func listWhere(q core.ListQuery) *whereBuilder {
	wb := newWhereBuilder()
	if t := strings.TrimSpace(q.Type); t != "" {
		wb.AddExpr("types @> ARRAY[%s]::text[]", t)
	}
	if q.SpanOnly {
		wb.AddRaw("span_raw_text <> ''")
	}
	return wb
}

// List returns a page of records, newest first.
func (p *Postgres) List(ctx context.Context, q core.ListQuery) (core.RecordPage, error) {
	wb := listWhere(q)
	whereClause, args := wb.Build()

	page := core.RecordPage{Page: q.Page, Limit: q.Limit, Records: []core.Record{}}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", recordsTable, whereClause)
	if err := p.db.QueryRow(ctx, countQuery, args...).Scan(&page.Total); err != nil {
		return core.RecordPage{}, fmt.Errorf("count records: %w", err)
	}

	offset := (q.Page - 1) * q.Limit
	next := wb.Next()
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		recordColumns, recordsTable, whereClause, next, next+1)

	rows, err := p.db.Query(ctx, query, append(args, q.Limit, offset)...)
	if err != nil {
		return core.RecordPage{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return core.RecordPage{}, fmt.Errorf("scan record: %w", err)
		}
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return core.RecordPage{}, err
	}
	return page, nil
}

// ExportRows streams every record, oldest first, in canonical row form.
// Iteration stops at the first error returned by fn.
func (p *Postgres) ExportRows(ctx context.Context, fn func(core.Row) error) error {
	query := fmt.Sprintf(`SELECT raw_text, types, normalized_text, span_raw_text, span_types, span_normalized_text
		FROM %s ORDER BY created_at, id`, recordsTable)

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query export: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row              core.Row
			types, spanTypes []string
		)
		if err := rows.Scan(&row.RawText, &types, &row.NormText, &row.SpanRaw, &spanTypes, &row.SpanNorm); err != nil {
			return fmt.Errorf("scan export row: %w", err)
		}
		row.Type = core.JoinTypes(types)
		row.SpanType = core.JoinTypes(spanTypes)
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanRecord(row scanner) (core.Record, error) {
	var (
		rec       core.Record
		id        pgtype.UUID
		importID  pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&id, &rec.RawText, &rec.NormalizedText, &rec.Types,
		&rec.SpanRawText, &rec.SpanNormalizedText, &rec.SpanTypes,
		&importID, &createdAt, &updatedAt,
	)
	if err != nil {
		return core.Record{}, err
	}

	rec.ID = fromPgUUID(id)
	rec.ImportID = uuidPtr(importID)
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return rec, nil
}
