// Package metadata records one row per accepted upload. Writes are best
// effort: a failing sink never fails the request that produced the record.
package metadata

import (
	"context"
	"log/slog"
	"time"

	"legaldoc-ai/internal/model"
)

type Record = model.DocumentMetadata

type Sink interface {
	Write(ctx context.Context, rec Record) error
	Name() string
}

func NewRecord(documentID, filename, fileType string, size int64, storagePath string, uploadedAt time.Time) Record {
	return Record{
		DocumentID:      documentID,
		Filename:        filename,
		FileType:        fileType,
		FileSize:        size,
		UploadTimestamp: uploadedAt.UTC(),
		Status:          model.DocumentStatusUploaded,
		StoragePath:     storagePath,
	}
}

// Logger wraps a Sink and swallows its errors after logging them.
type Logger struct {
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration
}

func NewLogger(sink Sink, logger *slog.Logger) *Logger {
	if sink == nil {
		sink = Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{sink: sink, logger: logger, timeout: 10 * time.Second}
}

// Log writes rec and reports whether the sink accepted it.
func (l *Logger) Log(ctx context.Context, rec Record) bool {
	writeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sink.Write(writeCtx, rec); err != nil {
		l.logger.Warn("metadata write failed",
			"sink", l.sink.Name(),
			"document_id", rec.DocumentID,
			"error", err,
		)
		return false
	}
	l.logger.Info("metadata recorded", "sink", l.sink.Name(), "document_id", rec.DocumentID)
	return true
}

func (l *Logger) SinkName() string {
	return l.sink.Name()
}

// Discard accepts every record without storing it.
type Discard struct{}

func (Discard) Write(context.Context, Record) error { return nil }

func (Discard) Name() string { return "none" }
