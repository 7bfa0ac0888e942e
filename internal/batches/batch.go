// Package batches implements the batch processing pipeline: submission
// with token budget enforcement, background execution through extraction
// and a single model call, and the atomic final commit of results, token
// debits, and state transitions.
package batches

import (
	"time"

	"github.com/docuglot/docuglot/internal/processing"
	"github.com/google/uuid"
)

// Status is the batch lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Batch groups documents processed together in one model call.
type Batch struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Mode            processing.Mode     `json:"mode"`
	SourceLanguage  processing.Language `json:"source_language"`
	TargetLanguage  processing.Language `json:"target_language"`
	Status          Status              `json:"status"`
	DocumentCount   int                 `json:"document_count"`
	TotalBytes      int64               `json:"total_bytes"`
	EstimatedTokens int64               `json:"estimated_tokens"`
	ConsumedTokens  *int64              `json:"consumed_tokens,omitempty"`
	ResultText      *string             `json:"result_text,omitempty"`
	ErrorMessage    *string             `json:"error_message,omitempty"`
	ProcessingMS    *int64              `json:"processing_ms,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// JobStatus is the processing job lifecycle state.
type JobStatus string

const (
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// ProcessingJob records one execution attempt of a batch: the serialized
// input descriptor, and on completion the produced output plus its token
// and timing metrics.
type ProcessingJob struct {
	ID           uuid.UUID  `json:"id"`
	BatchID      uuid.UUID  `json:"batch_id"`
	JobType      string     `json:"job_type"`
	Status       JobStatus  `json:"status"`
	Input        string     `json:"input"`
	Output       *string    `json:"output,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	TokensUsed   *int64     `json:"tokens_used,omitempty"`
	DurationMS   *int64     `json:"duration_ms,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// FileInput describes one already-uploaded file in a submission.
type FileInput struct {
	ObjectKey    string `json:"object_key"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// SubmitRequest is the batch submission payload.
type SubmitRequest struct {
	UserID         uuid.UUID   `json:"user_id"`
	Files          []FileInput `json:"files"`
	Mode           string      `json:"mode"`
	SourceLanguage string      `json:"source_language"`
	TargetLanguage string      `json:"target_language"`
}

// SubmitResult acknowledges an accepted submission.
type SubmitResult struct {
	BatchID         uuid.UUID   `json:"batch_id"`
	DocumentIDs     []uuid.UUID `json:"document_ids"`
	EstimatedTokens int64       `json:"estimated_tokens"`
	Status          Status      `json:"status"`
}
