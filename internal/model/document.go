package model

import "time"

const DocumentStatusUploaded = "UPLOADED"

// DocumentMetadata is the single row written for every accepted upload.
type DocumentMetadata struct {
	DocumentID      string    `gorm:"primaryKey;size:36" json:"document_id" bigquery:"document_id"`
	Filename        string    `gorm:"size:512;not null" json:"filename" bigquery:"filename"`
	FileType        string    `gorm:"size:128" json:"file_type" bigquery:"file_type"`
	FileSize        int64     `gorm:"not null" json:"file_size" bigquery:"file_size"`
	UploadTimestamp time.Time `gorm:"not null;index" json:"upload_timestamp" bigquery:"upload_timestamp"`
	Status          string    `gorm:"size:32;not null" json:"status" bigquery:"status"`
	StoragePath     string    `gorm:"size:1024;not null" json:"storage_path" bigquery:"storage_path"`
}

func (DocumentMetadata) TableName() string {
	return "document_metadata"
}
