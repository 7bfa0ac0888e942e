package ledger

import (
	"context"

	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/google/uuid"
)

// System defines the token accounting operations.
type System interface {
	FindUser(ctx context.Context, id uuid.UUID) (*User, error)
	Entries(ctx context.Context, userID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Entry], error)
	Grant(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*Entry, error)
	EnsureUser(ctx context.Context, id uuid.UUID, displayName string) (*User, error)
}
