package models

import (
	"time"
)

// ImportStatus represents the status of an import job
type ImportStatus string

const (
	ImportStatusQueued     ImportStatus = "queued"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s ImportStatus) Terminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportJob tracks one CSV upload through the import pipeline. JobID is the
// externally visible identifier; the numeric primary key never leaves the
// service. TotalRows stays nil until the header has been read, and
// ProcessedRows only ever grows — a job that fails mid-way keeps the counts
// from batches that already committed.
type ImportJob struct {
	ID            uint         `json:"-" gorm:"primaryKey"`
	JobID         string       `json:"job_id" gorm:"size:36;not null;uniqueIndex"`
	Filename      string       `json:"filename" gorm:"size:255;not null"`
	FilePath      string       `json:"file_path" gorm:"size:512;not null"`
	Status        ImportStatus `json:"status" gorm:"size:32;not null;default:'queued'"`
	TotalRows     *int         `json:"total_rows"`
	ProcessedRows *int         `json:"processed_rows"`
	ErrorMessage  *string      `json:"error_message"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName returns the table name for the ImportJob model
func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "sku", Description: "Unique product SKU", Required: true, Type: "string", Example: "TSH-BLU-001"},
		{Name: "name", Description: "Product name", Required: false, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "price", Description: "Product price", Required: false, Type: "number", Example: "29.99"},
		{Name: "is_active", Description: "1/true/yes/active to enable", Required: false, Type: "boolean", Example: "true"},
	}
}

// UploadResponse acknowledges an accepted upload
type UploadResponse struct {
	JobID string `json:"job_id"`
}

// JobListResponse is the paginated job list envelope
type JobListResponse struct {
	Items []ImportJob `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Pages int         `json:"pages"`
}
