package ledger

import "time"

// Reason values journaled with each entry.
const (
	ReasonAnalysis = "analysis"
	ReasonRefund   = "refund"
	ReasonTopUp    = "top_up"
)

// Entry is one append-only journal row. The user balance is the fold of a
// user's entries and is kept as a running total mutated in the same
// transaction that appends the entry.
type Entry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Delta        int64     `json:"delta"`
	Reason       string    `json:"reason"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
