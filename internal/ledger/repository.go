package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/docuglot/docuglot/pkg/pagination"
	"github.com/docuglot/docuglot/pkg/query"
	"github.com/docuglot/docuglot/pkg/repository"
	"github.com/google/uuid"
)

const userColumns = `id, display_name, tokens_granted, tokens_used, created_at, updated_at`

const entryColumns = `id, user_id, batch_id, document_id, amount, reason, created_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a ledger repository.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "ledger"),
		pagination: pagination,
	}
}

func (r *repo) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := repository.QueryOne(ctx, r.db, stmt, []any{id}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}
	return &user, nil
}

func (r *repo) Entries(ctx context.Context, userID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(entryProjection, entrySort).
		WhereEquals("UserId", userID)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count ledger entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Grant(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*Entry, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	entry, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		stmt := `UPDATE users SET tokens_granted = tokens_granted + $1, updated_at = NOW() WHERE id = $2`
		if err := repository.ExecExpectOne(ctx, tx, stmt, amount, userID); err != nil {
			return Entry{}, err
		}
		return insertEntry(ctx, tx, Entry{UserID: userID, Amount: amount, Reason: reason})
	})

	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}

	r.logger.Info("tokens granted", "user_id", userID, "amount", amount, "reason", reason)
	return &entry, nil
}

func (r *repo) EnsureUser(ctx context.Context, id uuid.UUID, displayName string) (*User, error) {
	stmt := fmt.Sprintf(`INSERT INTO users(id, display_name)
		VALUES($1, $2)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = NOW()
		RETURNING %s`, userColumns)

	user, err := repository.QueryOne(ctx, r.db, stmt, []any{id, displayName}, scanUser)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &user, nil
}

// Debit records token consumption inside the caller's transaction: one
// negative ledger entry plus the matching bump of the user's used counter.
// Amount is the positive number of tokens consumed.
func Debit(ctx context.Context, q repository.Querier, userID uuid.UUID, batchID uuid.UUID, amount int64, reason string) (Entry, error) {
	if amount <= 0 {
		return Entry{}, ErrZeroAmount
	}

	stmt := `UPDATE users SET tokens_used = tokens_used + $1, updated_at = NOW() WHERE id = $2`
	if err := repository.ExecExpectOne(ctx, q, stmt, amount, userID); err != nil {
		return Entry{}, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}

	return insertEntry(ctx, q, Entry{
		UserID:  userID,
		BatchID: &batchID,
		Amount:  -amount,
		Reason:  reason,
	})
}

// UserBalance reads a user's counters inside the caller's querier, for
// budget checks during batch submission.
func UserBalance(ctx context.Context, q repository.Querier, userID uuid.UUID) (*User, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := repository.QueryOne(ctx, q, stmt, []any{userID}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}
	return &user, nil
}

func insertEntry(ctx context.Context, q repository.Querier, entry Entry) (Entry, error) {
	stmt := fmt.Sprintf(`INSERT INTO token_ledger(id, user_id, batch_id, document_id, amount, reason)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING %s`, entryColumns)

	return repository.QueryOne(ctx, q, stmt, []any{
		uuid.New(), entry.UserID, entry.BatchID, entry.DocumentID, entry.Amount, entry.Reason,
	}, scanEntry)
}
