// Package store persists corpus records and import history in PostgreSQL
// using pgx. It implements core.Store.
package store

import (
	"context"

	"github.com/JonMunkholm/textnorm/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by Postgres.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Postgres is a core.Store backed by a pgx connection pool.
type Postgres struct {
	db DBTX
}

var _ core.Store = (*Postgres)(nil)

// New wraps an open pool.
func New(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Table names.
const (
	recordsTable = "textnorm_records"
	importsTable = "dataset_imports"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS textnorm_records (
	id                   uuid PRIMARY KEY,
	raw_text             text NOT NULL,
	normalized_text      text NOT NULL,
	types                text[] NOT NULL DEFAULT '{}',
	span_raw_text        text NOT NULL DEFAULT '',
	span_normalized_text text NOT NULL DEFAULT '',
	span_types           text[] NOT NULL DEFAULT '{}',
	import_id            uuid,
	created_at           timestamptz NOT NULL DEFAULT now(),
	updated_at           timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS textnorm_records_types_idx ON textnorm_records USING GIN (types);
CREATE INDEX IF NOT EXISTS textnorm_records_created_idx ON textnorm_records (created_at DESC, id);
CREATE INDEX IF NOT EXISTS textnorm_records_import_idx ON textnorm_records (import_id);

CREATE TABLE IF NOT EXISTS dataset_imports (
	id             uuid PRIMARY KEY,
	file_name      text NOT NULL,
	total_rows     integer NOT NULL,
	valid_rows     integer NOT NULL,
	corrected_rows integer NOT NULL,
	inserted       bigint NOT NULL,
	ip_address     inet,
	user_agent     text,
	created_at     timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS dataset_imports_created_idx ON dataset_imports (created_at DESC);
`

// Migrate creates the tables and indexes if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.Exec(ctx, schemaSQL)
	return err
}
