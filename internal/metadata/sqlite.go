package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteSink writes into a local database file.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(ctx context.Context, db *sql.DB) (*SQLiteSink, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS document_metadata (
	document_id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	upload_timestamp TEXT NOT NULL,
	status TEXT NOT NULL,
	storage_path TEXT NOT NULL
)`)
	if err != nil {
		return nil, fmt.Errorf("create metadata table failed: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Write(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO document_metadata
	(document_id, filename, file_type, file_size, upload_timestamp, status, storage_path)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.DocumentID, rec.Filename, rec.FileType, rec.FileSize,
		rec.UploadTimestamp.UTC().Format(time.RFC3339), rec.Status, rec.StoragePath,
	)
	if err != nil {
		return fmt.Errorf("insert metadata failed: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }
