package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink appends each record to a capped stream.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamSink(client *redis.Client, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Write(ctx context.Context, rec Record) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"document_id":      rec.DocumentID,
			"filename":         rec.Filename,
			"file_type":        rec.FileType,
			"file_size":        rec.FileSize,
			"upload_timestamp": rec.UploadTimestamp.UTC().Format(time.RFC3339),
			"status":           rec.Status,
			"storage_path":     rec.StoragePath,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s failed: %w", s.stream, err)
	}
	return nil
}

func (s *RedisStreamSink) Name() string { return "redis" }
