package metadata

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

type BigQuerySink struct {
	inserter *bigquery.Inserter
	tableID  string
}

func NewBigQuerySink(client *bigquery.Client, dataset, table string) *BigQuerySink {
	return &BigQuerySink{
		inserter: client.Dataset(dataset).Table(table).Inserter(),
		tableID:  fmt.Sprintf("%s.%s.%s", client.Project(), dataset, table),
	}
}

func (s *BigQuerySink) Write(ctx context.Context, rec Record) error {
	if err := s.inserter.Put(ctx, bigQueryRow(rec)); err != nil {
		return fmt.Errorf("insert into %s failed: %w", s.tableID, err)
	}
	return nil
}

func (s *BigQuerySink) Name() string { return "bigquery" }

type bigQueryRow Record

// Save uses the document id as insert id so a retried insert is deduplicated.
func (r bigQueryRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"document_id":      r.DocumentID,
		"filename":         r.Filename,
		"file_type":        r.FileType,
		"file_size":        r.FileSize,
		"upload_timestamp": r.UploadTimestamp.UTC().Format(time.RFC3339),
		"status":           r.Status,
		"storage_path":     r.StoragePath,
	}, r.DocumentID, nil
}
