package batches

import (
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
)

var projection = query.NewProjectionMap("public", "batches", "b").
	Project("id", "Id").
	Project("user_id", "UserId").
	Project("mode", "Mode").
	Project("source_language", "SourceLanguage").
	Project("target_language", "TargetLanguage").
	Project("status", "Status").
	Project("document_count", "DocumentCount").
	Project("total_bytes", "TotalBytes").
	Project("estimated_tokens", "EstimatedTokens").
	Project("consumed_tokens", "ConsumedTokens").
	Project("result_text", "ResultText").
	Project("error_message", "ErrorMessage").
	Project("processing_ms", "ProcessingMs").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

const batchColumns = `id, user_id, mode, source_language, target_language, status,
	document_count, total_bytes, estimated_tokens, consumed_tokens, result_text,
	error_message, processing_ms, completed_at, created_at, updated_at`

const jobColumns = `id, batch_id, job_type, status, input, output, error_message,
	tokens_used, duration_ms, created_at, updated_at, finished_at`

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(
		&b.ID,
		&b.UserID,
		&b.Mode,
		&b.SourceLanguage,
		&b.TargetLanguage,
		&b.Status,
		&b.DocumentCount,
		&b.TotalBytes,
		&b.EstimatedTokens,
		&b.ConsumedTokens,
		&b.ResultText,
		&b.ErrorMessage,
		&b.ProcessingMS,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func scanJob(s repository.Scanner) (ProcessingJob, error) {
	var j ProcessingJob
	err := s.Scan(
		&j.ID,
		&j.BatchID,
		&j.JobType,
		&j.Status,
		&j.Input,
		&j.Output,
		&j.ErrorMessage,
		&j.TokensUsed,
		&j.DurationMS,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.FinishedAt,
	)
	return j, err
}
