package documents

import (
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
)

var projection = query.NewProjectionMap("public", "documents", "d").
	Project("id", "Id").
	Project("user_id", "UserId").
	Project("batch_id", "BatchId").
	Project("object_key", "ObjectKey").
	Project("original_name", "OriginalName").
	Project("mime_type", "MimeType").
	Project("size_bytes", "SizeBytes").
	Project("mode", "Mode").
	Project("source_language", "SourceLanguage").
	Project("target_language", "TargetLanguage").
	Project("status", "Status").
	Project("extracted_text", "ExtractedText").
	Project("result_text", "ResultText").
	Project("error_message", "ErrorMessage").
	Project("tokens_used", "TokensUsed").
	Project("processing_ms", "ProcessingMs").
	Project("completed_at", "CompletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

const documentColumns = `id, user_id, batch_id, object_key, original_name, mime_type,
	size_bytes, mode, source_language, target_language, status, extracted_text,
	result_text, error_message, tokens_used, processing_ms, completed_at,
	created_at, updated_at`

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.UserID,
		&d.BatchID,
		&d.ObjectKey,
		&d.OriginalName,
		&d.MimeType,
		&d.SizeBytes,
		&d.Mode,
		&d.SourceLanguage,
		&d.TargetLanguage,
		&d.Status,
		&d.ExtractedText,
		&d.ResultText,
		&d.ErrorMessage,
		&d.TokensUsed,
		&d.ProcessingMS,
		&d.CompletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}
