package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresSink(pool *pgxpool.Pool, table string) *PostgresSink {
	return &PostgresSink{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

func (s *PostgresSink) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	document_id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	upload_timestamp TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	storage_path TEXT NOT NULL
)`, s.table))
	if err != nil {
		return fmt.Errorf("create metadata table failed: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
	(document_id, filename, file_type, file_size, upload_timestamp, status, storage_path)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (document_id) DO NOTHING`, s.table),
		rec.DocumentID, rec.Filename, rec.FileType, rec.FileSize,
		rec.UploadTimestamp, rec.Status, rec.StoragePath,
	)
	if err != nil {
		return fmt.Errorf("insert metadata failed: %w", err)
	}
	return nil
}

func (s *PostgresSink) Name() string { return "postgres" }
