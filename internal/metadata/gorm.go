package metadata

import (
	"context"

	"legaldoc-ai/internal/repository"
)

type GormSink struct {
	repo *repository.DocumentMetadataRepository
}

func NewGormSink(repo *repository.DocumentMetadataRepository) *GormSink {
	return &GormSink{repo: repo}
}

func (s *GormSink) Write(ctx context.Context, rec Record) error {
	return s.repo.Create(ctx, &rec)
}

func (s *GormSink) Name() string { return "mysql" }
