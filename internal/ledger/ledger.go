// Package ledger tracks per-user token accounting. Every grant and debit
// is an immutable ledger entry; the user row carries running counters and
// the ledger remains the authoritative history behind them.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable token movement. Amount is signed: grants are
// positive, consumption debits are negative.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BatchID    *uuid.UUID `json:"batch_id,omitempty"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Amount     int64      `json:"amount"`
	Reason     string     `json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
}

// User carries the running token counters derived from the ledger.
type User struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	TokensGranted int64     `json:"tokens_granted"`
	TokensUsed    int64     `json:"tokens_used"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Balance returns the tokens still available to the user.
func (u *User) Balance() int64 {
	return u.TokensGranted - u.TokensUsed
}
