// Package documents provides document metadata persistence and the query
// surface over processed documents. File bytes live in blob storage; rows
// here carry the processing lifecycle from upload through batch completion.
package documents

import (
	"time"

	"github.com/docuglot/docuglot/internal/processing"
	"github.com/google/uuid"
)

// Status is the per-document processing state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Document represents one file inside a processing batch.
type Document struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	BatchID        *uuid.UUID          `json:"batch_id,omitempty"`
	ObjectKey      string              `json:"object_key"`
	OriginalName   string              `json:"original_name"`
	MimeType       string              `json:"mime_type"`
	SizeBytes      int64               `json:"size_bytes"`
	Mode           processing.Mode     `json:"mode"`
	SourceLanguage processing.Language `json:"source_language"`
	TargetLanguage processing.Language `json:"target_language"`
	Status         Status              `json:"status"`
	ExtractedText  *string             `json:"extracted_text,omitempty"`
	ResultText     *string             `json:"result_text,omitempty"`
	ErrorMessage   *string             `json:"error_message,omitempty"`
	TokensUsed     *int64              `json:"tokens_used,omitempty"`
	ProcessingMS   *int64              `json:"processing_ms,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// CreateCommand contains the data required to register a document row.
// The file bytes are expected to already exist at ObjectKey.
type CreateCommand struct {
	UserID         uuid.UUID
	BatchID        uuid.UUID
	ObjectKey      string
	OriginalName   string
	MimeType       string
	SizeBytes      int64
	Mode           processing.Mode
	SourceLanguage processing.Language
	TargetLanguage processing.Language
}

// UploadRequest asks for a presigned direct-upload target for a new file.
type UploadRequest struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}
