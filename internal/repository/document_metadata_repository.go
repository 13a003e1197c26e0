package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"legaldoc-ai/internal/model"
)

type DocumentMetadataRepository struct {
	db *gorm.DB
}

func NewDocumentMetadataRepository(db *gorm.DB) *DocumentMetadataRepository {
	return &DocumentMetadataRepository{db: db}
}

func (r *DocumentMetadataRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&model.DocumentMetadata{}); err != nil {
		return fmt.Errorf("auto migrate document metadata failed: %w", err)
	}
	return nil
}

// Create inserts the row; a redelivered record with the same document id is
// ignored.
func (r *DocumentMetadataRepository) Create(ctx context.Context, doc *model.DocumentMetadata) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(doc).Error
	if err != nil {
		return fmt.Errorf("create document metadata failed: %w", err)
	}
	return nil
}

