package batches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuglot/docuglot/internal/extraction"
	"github.com/docuglot/docuglot/internal/inference"
	"github.com/docuglot/docuglot/internal/processing"
	"github.com/docuglot/docuglot/internal/tokens"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PromptResolver yields the prompt messages for a processing run.
type PromptResolver interface {
	Resolve(ctx context.Context, mode processing.Mode, source, target processing.Language) ([]inference.Message, error)
}

// Orchestrator drives the batch lifecycle from submission through the
// committed result.
type Orchestrator struct {
	store     Store
	extractor extraction.System
	resolver  PromptResolver
	inference inference.Client
	runner    *Runner
	logger    *slog.Logger
}

// NewOrchestrator assembles the batch pipeline.
func NewOrchestrator(store Store, extractor extraction.System, resolver PromptResolver, client inference.Client, runner *Runner, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		extractor: extractor,
		resolver:  resolver,
		inference: client,
		runner:    runner,
		logger:    logger.With("system", "orchestrator"),
	}
}

// Submit validates a submission, enforces the token budget, creates the
// batch records, and enqueues background execution.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	sub, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}

	batch, docs, err := o.store.CreateSubmission(ctx, *sub)
	if err != nil {
		return nil, err
	}

	if !o.runner.Enqueue(func(taskCtx context.Context) {
		o.Execute(taskCtx, batch.ID)
	}) {
		// Nothing would ever move the batch out of Pending, so the
		// submission fails outright rather than acknowledging work that
		// cannot run.
		if failErr := o.store.Fail(ctx, batch.ID, uuid.Nil, ErrQueueFull.Error(), 0); failErr != nil {
			o.logger.Error("queue-full fan-out failed", "batch_id", batch.ID, "error", failErr)
		}
		return nil, fmt.Errorf("%w: batch %s", ErrQueueFull, batch.ID)
	}

	ids := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	return &SubmitResult{
		BatchID:         batch.ID,
		DocumentIDs:     ids,
		EstimatedTokens: batch.EstimatedTokens,
		Status:          batch.Status,
	}, nil
}

// Execute runs a pending batch to completion: parallel extraction, merge,
// prompt resolution, one model call, cleanup, and the atomic commit. Any
// error fans the failure out to the batch, its documents, and the job.
func (o *Orchestrator) Execute(ctx context.Context, batchID uuid.UUID) {
	start := time.Now()

	exec, err := o.store.BeginExecution(ctx, batchID)
	if err != nil {
		o.logger.Error("begin execution failed", "batch_id", batchID, "error", err)
		return
	}

	if err := o.run(ctx, exec, start); err != nil {
		elapsed := time.Since(start).Milliseconds()
		if failErr := o.store.Fail(ctx, batchID, exec.Job.ID, err.Error(), elapsed); failErr != nil {
			o.logger.Error("failure fan-out failed", "batch_id", batchID, "error", failErr)
		}
		o.logger.Warn("batch execution failed",
			"batch_id", batchID,
			"processing_ms", elapsed,
			"error", err,
		)
	}
}

func (o *Orchestrator) run(ctx context.Context, exec *Execution, start time.Time) error {
	extracted := make([]extractedDocument, len(exec.Documents))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, doc := range exec.Documents {
		group.Go(func() error {
			text, err := o.extractor.Extract(groupCtx, extraction.Input{
				DocumentID: doc.ID,
				ObjectKey:  doc.ObjectKey,
				MimeType:   doc.MimeType,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", doc.OriginalName, err)
			}

			if err := o.store.StoreExtracted(groupCtx, doc.ID, text); err != nil {
				return fmt.Errorf("persist extracted text for %s: %w", doc.OriginalName, err)
			}

			extracted[i] = extractedDocument{Name: doc.OriginalName, Text: text}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	merged := mergeExtracted(extracted)

	messages, err := o.resolver.Resolve(ctx, exec.Batch.Mode,
		exec.Batch.SourceLanguage, exec.Batch.TargetLanguage)
	if err != nil {
		return err
	}
	messages = append(messages, inference.Message{Role: inference.RoleUser, Content: merged})

	raw, err := o.inference.ChatComplete(ctx, messages)
	if err != nil {
		return err
	}

	result, err := inference.Clean(raw)
	if err != nil {
		return err
	}

	inputLen := 0
	for _, m := range messages {
		inputLen += len(m.Content)
	}

	consumed := tokens.Consumed(inputLen, len(result))
	perDoc := tokens.PerDocument(consumed, len(exec.Documents))

	return o.store.Complete(ctx, Commit{
		BatchID:        exec.Batch.ID,
		JobID:          exec.Job.ID,
		UserID:         exec.Batch.UserID,
		ResultText:     result,
		ConsumedTokens: int64(consumed),
		TokensPerDoc:   int64(perDoc),
		ProcessingMS:   time.Since(start).Milliseconds(),
		CompletedAt:    time.Now().UTC(),
	})
}

// Recover fails batches left Processing by an earlier process. Called once
// at startup before the runner accepts work.
func (o *Orchestrator) Recover(ctx context.Context) error {
	n, err := o.store.ReconcileInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("reconcile interrupted batches: %w", err)
	}
	if n > 0 {
		o.logger.Warn("recovered interrupted batches", "count", n)
	}
	return nil
}

func validateSubmission(req SubmitRequest) (*Submission, error) {
	if req.UserID == uuid.Nil {
		return nil, errors.New("user_id required")
	}
	if len(req.Files) == 0 {
		return nil, ErrEmptyBatch
	}

	mode, err := processing.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	source, err := processing.ParseLanguage(req.SourceLanguage)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q", ErrInvalidLanguage, req.SourceLanguage)
	}

	target := processing.LanguageAuto
	if mode.RequiresTarget() {
		target, err = processing.ParseLanguage(req.TargetLanguage)
		if err != nil || target.IsAuto() {
			return nil, fmt.Errorf("%w: target %q", ErrInvalidLanguage, req.TargetLanguage)
		}
	}

	var totalBytes int64
	for _, f := range req.Files {
		if f.ObjectKey == "" || f.OriginalName == "" {
			return nil, fmt.Errorf("%w: every file needs object_key and original_name", ErrEmptyBatch)
		}
		totalBytes += f.SizeBytes
	}

	return &Submission{
		UserID:          req.UserID,
		Mode:            mode,
		SourceLanguage:  source,
		TargetLanguage:  target,
		Files:           req.Files,
		EstimatedTokens: int64(tokens.EstimateNeeded(totalBytes, mode)),
		TotalBytes:      totalBytes,
	}, nil
}
