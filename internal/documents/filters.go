package documents

import (
	"net/url"

	"github.com/docuglot/docuglot/pkg/query"
	"github.com/google/uuid"
)

// Filters contains optional criteria for filtering document queries.
type Filters struct {
	UserID   *uuid.UUID
	BatchID  *uuid.UUID
	Status   *Status
	MimeType *string
}

// FiltersFromQuery extracts document filters from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id, err := uuid.Parse(values.Get("user_id")); err == nil {
		f.UserID = &id
	}

	if id, err := uuid.Parse(values.Get("batch_id")); err == nil {
		f.BatchID = &id
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if mt := values.Get("mime_type"); mt != "" {
		f.MimeType = &mt
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.UserID != nil {
		b.WhereEquals("UserId", *f.UserID)
	}
	if f.BatchID != nil {
		b.WhereEquals("BatchId", *f.BatchID)
	}
	if f.Status != nil {
		b.WhereEquals("Status", string(*f.Status))
	}
	return b.WhereContains("MimeType", f.MimeType)
}
