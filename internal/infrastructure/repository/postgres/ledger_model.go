package postgres

import "time"

type ledgerEntryTableModel struct {
	ID           int64     `db:"id"`
	UserID       string    `db:"user_id"`
	Delta        int64     `db:"delta"`
	Reason       string    `db:"reason"`
	BalanceAfter int64     `db:"balance_after"`
	CreatedAt    time.Time `db:"created_at"`
}
