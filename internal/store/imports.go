package store

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// RecordImport writes a history entry for a completed import.
func (p *Postgres) RecordImport(ctx context.Context, imp core.ImportRecord) error {
	query := fmt.Sprintf(`INSERT INTO %s
		(id, file_name, total_rows, valid_rows, corrected_rows, inserted, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, importsTable)

	_, err := p.db.Exec(ctx, query,
		toPgUUID(imp.ID),
		imp.FileName,
		imp.TotalRows,
		imp.ValidRows,
		imp.CorrectedRows,
		imp.Inserted,
		toPgInet(imp.IPAddress),
		toPgText(imp.UserAgent),
		imp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}
	return nil
}

// ListImports returns the most recent imports, newest first.
func (p *Postgres) ListImports(ctx context.Context, limit int) ([]core.ImportRecord, error) {
	query := fmt.Sprintf(`SELECT id, file_name, total_rows, valid_rows, corrected_rows, inserted, ip_address, user_agent, created_at
		FROM %s ORDER BY created_at DESC LIMIT $1`, importsTable)

	rows, err := p.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []core.ImportRecord{}
	for rows.Next() {
		var (
			imp       core.ImportRecord
			id        pgtype.UUID
			ipAddress *netip.Addr
			userAgent pgtype.Text
			createdAt pgtype.Timestamptz
		)
		err := rows.Scan(&id, &imp.FileName, &imp.TotalRows, &imp.ValidRows, &imp.CorrectedRows,
			&imp.Inserted, &ipAddress, &userAgent, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.ID = fromPgUUID(id)
		imp.IPAddress = inetString(ipAddress)
		imp.UserAgent = userAgent.String
		imp.CreatedAt = createdAt.Time
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}
