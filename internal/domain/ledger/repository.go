package ledger

import (
	"context"
	"errors"
)

// ErrInsufficientBalance is returned by ApplyDebit when the guarded balance
// check fails. No entry is appended and the balance is untouched.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Repository persists balances and the journal. ApplyDebit must be
// race-safe: the balance check and the write happen under store-level
// atomicity (compare-and-set or a serialized transaction), never as a
// read-then-write pair.
type Repository interface {
	// ApplyDebit atomically subtracts amount (> 0) when the balance covers
	// it and appends the journal entry.
	ApplyDebit(ctx context.Context, userID string, amount int64, reason string) (Entry, error)
	// ApplyCredit atomically adds amount (> 0); always succeeds for a known
	// user and creates the account at zero when missing.
	ApplyCredit(ctx context.Context, userID string, amount int64, reason string) (Entry, error)
	Balance(ctx context.Context, userID string) (int64, error)
	Entries(ctx context.Context, userID string, limit int) ([]Entry, error)
}
