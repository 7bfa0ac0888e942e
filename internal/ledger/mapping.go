package ledger

import (
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
)

var entryProjection = query.NewProjectionMap("public", "token_ledger", "l").
	Project("id", "Id").
	Project("user_id", "UserId").
	Project("batch_id", "BatchId").
	Project("document_id", "DocumentId").
	Project("amount", "Amount").
	Project("reason", "Reason").
	Project("created_at", "CreatedAt")

var entrySort = query.SortField{Field: "CreatedAt", Descending: true}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.UserID,
		&e.BatchID,
		&e.DocumentID,
		&e.Amount,
		&e.Reason,
		&e.CreatedAt,
	)
	return e, err
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.DisplayName,
		&u.TokensGranted,
		&u.TokensUsed,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
