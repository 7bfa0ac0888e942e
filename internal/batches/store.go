package batches

import (
	"context"
	"time"

	"github.com/docuglot/docuglot/internal/documents"
	"github.com/docuglot/docuglot/internal/processing"
	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/google/uuid"
)

// Submission carries the validated inputs for creating a batch with its
// document rows.
type Submission struct {
	UserID          uuid.UUID
	Mode            processing.Mode
	SourceLanguage  processing.Language
	TargetLanguage  processing.Language
	Files           []FileInput
	EstimatedTokens int64
	TotalBytes      int64
}

// Execution is the state handed to the background run: the batch, its
// documents in merge order, and the job row recording the attempt.
type Execution struct {
	Batch     Batch
	Documents []documents.Document
	Job       ProcessingJob
}

// Commit carries everything the atomic completion transaction writes.
type Commit struct {
	BatchID        uuid.UUID
	JobID          uuid.UUID
	UserID         uuid.UUID
	ResultText     string
	ConsumedTokens int64
	TokensPerDoc   int64
	ProcessingMS   int64
	CompletedAt    time.Time
}

// BatchDetail is a batch together with its documents.
type BatchDetail struct {
	Batch     Batch                `json:"batch"`
	Documents []documents.Document `json:"documents"`
}

// Store defines the batch persistence operations.
type Store interface {
	// CreateSubmission atomically checks the user's token balance against
	// the estimate and creates the batch plus one pending document per
	// file. Returns ErrInsufficientBudget with nothing created when the
	// balance does not cover the estimate.
	CreateSubmission(ctx context.Context, sub Submission) (*Batch, []documents.Document, error)

	// BeginExecution transitions the batch and its documents to
	// Processing and opens a running job with the serialized input.
	BeginExecution(ctx context.Context, batchID uuid.UUID) (*Execution, error)

	// StoreExtracted persists one document's extracted text mid-run.
	StoreExtracted(ctx context.Context, documentID uuid.UUID, text string) error

	// Complete atomically finalizes a successful run: batch and documents
	// Completed with results and token shares, job Completed, user
	// counters debited, one negative ledger entry.
	Complete(ctx context.Context, commit Commit) error

	// Fail marks the batch and its unfinished documents Failed with the
	// message and closes the job. Extracted text already persisted stays.
	// No tokens are debited.
	Fail(ctx context.Context, batchID, jobID uuid.UUID, message string, processingMS int64) error

	// ReconcileInterrupted fails batches left Processing by a previous
	// process, returning how many were recovered.
	ReconcileInterrupted(ctx context.Context) (int64, error)

	Find(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*BatchDetail, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Batch], error)
}
