package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/docuglot/docuglot/internal/config"
	"github.com/docuglot/docuglot/internal/storage"
	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	cfg        *config.StorageConfig
}

// New creates a document repository backed by the database and blob storage.
func New(db *sql.DB, store storage.System, cfg *config.StorageConfig, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
		cfg:        cfg,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "OriginalName", "ObjectKey")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		BuildSingle("Id", id)

	doc, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &doc, nil
}

func (r *repo) RequestUpload(ctx context.Context, req UploadRequest) (*UploadTarget, error) {
	if req.OriginalName == "" {
		return nil, fmt.Errorf("%w: original_name required", ErrInvalidFile)
	}
	if req.SizeBytes <= 0 {
		return nil, fmt.Errorf("%w: size_bytes required", ErrInvalidFile)
	}
	if req.SizeBytes > r.cfg.MaxUploadSizeBytes() {
		return nil, ErrFileTooLarge
	}

	key := buildObjectKey(uuid.New(), req.OriginalName)

	form, err := r.storage.PresignedUploadForm(key, req.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	r.logger.Info("upload target issued", "object_key", key, "size_bytes", req.SizeBytes)

	return &UploadTarget{
		ObjectKey: key,
		URL:       form.URL,
		Fields:    form.Fields,
	}, nil
}

func (r *repo) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return "", err
	}
	return r.storage.PresignedGetURL(doc.ObjectKey, r.cfg.PresignTTLDuration())
}

// Insert registers a document row inside the caller's transaction. Rows
// start Pending; lifecycle transitions happen through the batch helpers
// below so document and batch state always move together.
func Insert(ctx context.Context, q repository.Querier, cmd CreateCommand) (Document, error) {
	stmt := fmt.Sprintf(`INSERT INTO documents(id, user_id, batch_id, object_key, original_name,
			mime_type, size_bytes, mode, source_language, target_language, status)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, documentColumns)

	doc, err := repository.QueryOne(ctx, q, stmt, []any{
		uuid.New(), cmd.UserID, cmd.BatchID, cmd.ObjectKey, cmd.OriginalName,
		cmd.MimeType, cmd.SizeBytes, string(cmd.Mode), string(cmd.SourceLanguage),
		string(cmd.TargetLanguage), string(StatusPending),
	}, scanDocument)

	if err != nil {
		return Document{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return doc, nil
}

// MarkProcessing moves all pending documents of a batch to Processing.
func MarkProcessing(ctx context.Context, q repository.Querier, batchID uuid.UUID) error {
	stmt := `UPDATE documents SET status = $1, updated_at = NOW()
		WHERE batch_id = $2 AND status = $3`

	_, err := q.ExecContext(ctx, stmt, string(StatusProcessing), batchID, string(StatusPending))
	return err
}

// StoreExtractedText persists a document's extracted text as soon as its
// extraction tier succeeds, before the batch outcome is known.
func StoreExtractedText(ctx context.Context, q repository.Querier, id uuid.UUID, text string) error {
	stmt := `UPDATE documents SET extracted_text = $1, updated_at = NOW() WHERE id = $2`
	return repository.ExecExpectOne(ctx, q, stmt, text, id)
}

// CompleteForBatch finalizes every document of a completed batch with the
// shared result text, the per-document token share, and timing.
func CompleteForBatch(ctx context.Context, q repository.Querier, batchID uuid.UUID, resultText string, tokensPerDoc, processingMS int64, completedAt time.Time) error {
	stmt := `UPDATE documents
		SET status = $1, result_text = $2, tokens_used = $3, processing_ms = $4,
			completed_at = $5, updated_at = NOW()
		WHERE batch_id = $6`

	_, err := q.ExecContext(ctx, stmt, string(StatusCompleted), resultText,
		tokensPerDoc, processingMS, completedAt, batchID)
	return err
}

// FailForBatch marks every non-completed document of a batch Failed with
// the error message, keeping any extracted text already persisted.
func FailForBatch(ctx context.Context, q repository.Querier, batchID uuid.UUID, message string, processingMS int64) error {
	stmt := `UPDATE documents
		SET status = $1, error_message = $2, processing_ms = $3, updated_at = NOW()
		WHERE batch_id = $4 AND status <> $5`

	_, err := q.ExecContext(ctx, stmt, string(StatusFailed), message,
		processingMS, batchID, string(StatusCompleted))
	return err
}

// ListForBatch returns a batch's documents ordered by original file name,
// the order the merged model input is assembled in.
func ListForBatch(ctx context.Context, q repository.Querier, batchID uuid.UUID) ([]Document, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM documents WHERE batch_id = $1 ORDER BY original_name, id`, documentColumns)
	return repository.QueryMany(ctx, q, stmt, []any{batchID}, scanDocument)
}

func buildObjectKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id.String(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
