package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/docuglot/docuglot/internal/documents"
	"github.com/docuglot/docuglot/internal/ledger"
	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
	"github.com/google/uuid"
)

type store struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates the batch persistence layer.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &store{
		db:         db,
		logger:     logger.With("system", "batches"),
		pagination: pagination,
	}
}

func (s *store) CreateSubmission(ctx context.Context, sub Submission) (*Batch, []documents.Document, error) {
	type created struct {
		batch Batch
		docs  []documents.Document
	}

	result, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (created, error) {
		user, err := ledger.UserBalance(ctx, tx, sub.UserID)
		if err != nil {
			return created{}, err
		}

		if user.Balance() < sub.EstimatedTokens {
			return created{}, fmt.Errorf("%w: balance %d, estimated %d",
				ErrInsufficientBudget, user.Balance(), sub.EstimatedTokens)
		}

		stmt := fmt.Sprintf(`INSERT INTO batches(id, user_id, mode, source_language, target_language,
				status, document_count, total_bytes, estimated_tokens)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING %s`, batchColumns)

		batch, err := repository.QueryOne(ctx, tx, stmt, []any{
			uuid.New(), sub.UserID, string(sub.Mode), string(sub.SourceLanguage),
			string(sub.TargetLanguage), string(StatusPending), len(sub.Files),
			sub.TotalBytes, sub.EstimatedTokens,
		}, scanBatch)
		if err != nil {
			return created{}, err
		}

		docs := make([]documents.Document, 0, len(sub.Files))
		for _, f := range sub.Files {
			doc, err := documents.Insert(ctx, tx, documents.CreateCommand{
				UserID:         sub.UserID,
				BatchID:        batch.ID,
				ObjectKey:      f.ObjectKey,
				OriginalName:   f.OriginalName,
				MimeType:       f.MimeType,
				SizeBytes:      f.SizeBytes,
				Mode:           sub.Mode,
				SourceLanguage: sub.SourceLanguage,
				TargetLanguage: sub.TargetLanguage,
			})
			if err != nil {
				return created{}, err
			}
			docs = append(docs, doc)
		}

		return created{batch: batch, docs: docs}, nil
	})

	if err != nil {
		return nil, nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("batch submitted",
		"batch_id", result.batch.ID,
		"user_id", sub.UserID,
		"mode", string(sub.Mode),
		"documents", len(result.docs),
		"estimated_tokens", sub.EstimatedTokens,
	)

	return &result.batch, result.docs, nil
}

func (s *store) BeginExecution(ctx context.Context, batchID uuid.UUID) (*Execution, error) {
	exec, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Execution, error) {
		stmt := fmt.Sprintf(`UPDATE batches SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING %s`, batchColumns)

		batch, err := repository.QueryOne(ctx, tx, stmt, []any{
			string(StatusProcessing), batchID, string(StatusPending),
		}, scanBatch)
		if err != nil {
			return Execution{}, err
		}

		if err := documents.MarkProcessing(ctx, tx, batchID); err != nil {
			return Execution{}, err
		}

		docs, err := documents.ListForBatch(ctx, tx, batchID)
		if err != nil {
			return Execution{}, err
		}

		input, err := buildJobInput(batch, docs)
		if err != nil {
			return Execution{}, err
		}

		jobStmt := fmt.Sprintf(`INSERT INTO processing_jobs(id, batch_id, job_type, status, input)
			VALUES($1, $2, $3, $4, $5)
			RETURNING %s`, jobColumns)

		job, err := repository.QueryOne(ctx, tx, jobStmt, []any{
			uuid.New(), batchID, batch.Mode.JobType(), string(JobRunning), input,
		}, scanJob)
		if err != nil {
			return Execution{}, err
		}

		return Execution{Batch: batch, Documents: docs, Job: job}, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &exec, nil
}

func (s *store) StoreExtracted(ctx context.Context, documentID uuid.UUID, text string) error {
	return documents.StoreExtractedText(ctx, s.db, documentID, text)
}

func (s *store) Complete(ctx context.Context, commit Commit) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		stmt := `UPDATE batches
			SET status = $1, result_text = $2, consumed_tokens = $3, processing_ms = $4,
				completed_at = $5, updated_at = NOW()
			WHERE id = $6 AND status = $7`

		if err := repository.ExecExpectOne(ctx, tx, stmt, string(StatusCompleted),
			commit.ResultText, commit.ConsumedTokens, commit.ProcessingMS,
			commit.CompletedAt, commit.BatchID, string(StatusProcessing)); err != nil {
			return struct{}{}, err
		}

		if err := documents.CompleteForBatch(ctx, tx, commit.BatchID, commit.ResultText,
			commit.TokensPerDoc, commit.ProcessingMS, commit.CompletedAt); err != nil {
			return struct{}{}, err
		}

		if err := closeJob(ctx, tx, commit.JobID, JobCompleted,
			&commit.ResultText, nil, &commit.ConsumedTokens, commit.ProcessingMS); err != nil {
			return struct{}{}, err
		}

		_, err := ledger.Debit(ctx, tx, commit.UserID, commit.BatchID,
			commit.ConsumedTokens, "batch processing")
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("batch completed",
		"batch_id", commit.BatchID,
		"consumed_tokens", commit.ConsumedTokens,
		"processing_ms", commit.ProcessingMS,
	)
	return nil
}

func (s *store) Fail(ctx context.Context, batchID, jobID uuid.UUID, message string, processingMS int64) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		stmt := `UPDATE batches
			SET status = $1, error_message = $2, processing_ms = $3, updated_at = NOW()
			WHERE id = $4 AND status <> $5`

		if _, err := tx.ExecContext(ctx, stmt, string(StatusFailed), message,
			processingMS, batchID, string(StatusCompleted)); err != nil {
			return struct{}{}, err
		}

		if err := documents.FailForBatch(ctx, tx, batchID, message, processingMS); err != nil {
			return struct{}{}, err
		}

		if jobID != uuid.Nil {
			if err := closeJob(ctx, tx, jobID, JobFailed, nil, &message, nil, processingMS); err != nil {
				return struct{}{}, err
			}
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Warn("batch failed", "batch_id", batchID, "error", message)
	return nil
}

func (s *store) ReconcileInterrupted(ctx context.Context) (int64, error) {
	const message = "interrupted by restart"

	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		stmt := `UPDATE batches SET status = $1, error_message = $2, updated_at = NOW()
			WHERE status = $3`

		result, err := tx.ExecContext(ctx, stmt, string(StatusFailed), message, string(StatusProcessing))
		if err != nil {
			return 0, err
		}

		n, err := result.RowsAffected()
		if err != nil || n == 0 {
			return n, err
		}

		docStmt := `UPDATE documents SET status = $1, error_message = $2, updated_at = NOW()
			WHERE status = $3`
		if _, err := tx.ExecContext(ctx, docStmt, string(documents.StatusFailed),
			message, string(documents.StatusProcessing)); err != nil {
			return 0, err
		}

		jobStmt := `UPDATE processing_jobs
			SET status = $1, error_message = $2, updated_at = NOW(), finished_at = NOW()
			WHERE status = $3`
		if _, err := tx.ExecContext(ctx, jobStmt, string(JobFailed),
			message, string(JobRunning)); err != nil {
			return 0, err
		}

		return n, nil
	})
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		BuildSingle("Id", id)

	batch, err := repository.QueryOne(ctx, s.db, q, args, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &batch, nil
}

func (s *store) FindDetail(ctx context.Context, id uuid.UUID) (*BatchDetail, error) {
	batch, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := documents.ListForBatch(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("list batch documents: %w", err)
	}

	return &BatchDetail{Batch: *batch, Documents: docs}, nil
}

func (s *store) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Batch], error) {
	page.Normalize(s.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count batches: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanBatch)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func closeJob(ctx context.Context, q repository.Querier, jobID uuid.UUID, status JobStatus, output, message *string, tokensUsed *int64, durationMS int64) error {
	stmt := `UPDATE processing_jobs
		SET status = $1, output = $2, error_message = $3, tokens_used = $4,
			duration_ms = $5, updated_at = NOW(), finished_at = NOW()
		WHERE id = $6 AND status = $7`

	return repository.ExecExpectOne(ctx, q, stmt, string(status), output, message,
		tokensUsed, durationMS, jobID, string(JobRunning))
}

// jobInput is the serialized descriptor stored on the job row.
type jobInput struct {
	Mode           string         `json:"mode"`
	SourceLanguage string         `json:"source_language"`
	TargetLanguage string         `json:"target_language"`
	Documents      []jobInputFile `json:"documents"`
}

type jobInputFile struct {
	ID           uuid.UUID `json:"id"`
	ObjectKey    string    `json:"object_key"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
}

func buildJobInput(batch Batch, docs []documents.Document) (string, error) {
	input := jobInput{
		Mode:           string(batch.Mode),
		SourceLanguage: string(batch.SourceLanguage),
		TargetLanguage: string(batch.TargetLanguage),
		Documents:      make([]jobInputFile, len(docs)),
	}

	for i, d := range docs {
		input.Documents[i] = jobInputFile{
			ID:           d.ID,
			ObjectKey:    d.ObjectKey,
			OriginalName: d.OriginalName,
			MimeType:     d.MimeType,
			SizeBytes:    d.SizeBytes,
		}
	}

	b, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("serialize job input: %w", err)
	}
	return string(b), nil
}
