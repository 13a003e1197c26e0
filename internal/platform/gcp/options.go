// Package gcp builds Google Cloud clients from the service configuration.
package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"legaldoc-ai/internal/config"
)

// ClientOptions picks inline JSON credentials first, then a credentials
// file, and otherwise leaves the client on application default credentials.
func ClientOptions(cfg config.GCPConfig) []option.ClientOption {
	switch {
	case cfg.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}
	case cfg.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	default:
		return nil
	}
}

func NewStorage(ctx context.Context, cfg config.GCPConfig) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create storage client failed: %w", err)
	}
	return client, nil
}

func NewBigQuery(ctx context.Context, cfg config.GCPConfig) (*bigquery.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("bigquery requires a project id")
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client failed: %w", err)
	}
	return client, nil
}

// CheckBucket confirms the bucket is reachable with the configured credentials.
func CheckBucket(ctx context.Context, client *storage.Client, bucket string) error {
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.Bucket(bucket).Attrs(checkCtx); err != nil {
		return fmt.Errorf("check bucket %s failed: %w", bucket, err)
	}
	return nil
}
