package documents

import (
	"context"

	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/google/uuid"
)

// UploadTarget is the response to an upload request: the object key the
// file will live under plus the presigned form to PUT it there.
type UploadTarget struct {
	ObjectKey string            `json:"object_key"`
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
}

// System defines the document query and upload operations.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	RequestUpload(ctx context.Context, req UploadRequest) (*UploadTarget, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}
