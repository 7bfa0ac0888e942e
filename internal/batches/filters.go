package batches

import (
	"net/url"

	"github.com/docuglot/docuglot/pkg/query"
	"github.com/google/uuid"
)

// Filters contains optional criteria for filtering batch queries.
type Filters struct {
	UserID *uuid.UUID
	Status *Status
}

// FiltersFromQuery extracts batch filters from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if id, err := uuid.Parse(values.Get("user_id")); err == nil {
		f.UserID = &id
	}

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	return f
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.UserID != nil {
		b.WhereEquals("UserId", *f.UserID)
	}
	if f.Status != nil {
		b.WhereEquals("Status", string(*f.Status))
	}
	return b
}
