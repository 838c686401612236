package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/querybuilder"
)

// LedgerRepository persists balances and the journal. The debit guard and
// the journal append run inside one transaction; the conditional UPDATE is
// what makes two concurrent debits against the last credit race-safe.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ApplyDebit(ctx context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	if amount <= 0 {
		return ledger.Entry{}, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("begin tx debit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balanceAfter int64
	err = tx.QueryRowxContext(ctx,
		`UPDATE user_balances
		    SET balance = balance - $2, updated_at = NOW()
		  WHERE user_id = $1 AND balance >= $2
		 RETURNING balance`,
		userID, amount,
	).Scan(&balanceAfter)
	if errors.Is(err, sql.ErrNoRows) {
		// Either no account or not enough credit; both surface the same way.
		return ledger.Entry{}, ledger.ErrInsufficientBalance
	}
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("apply debit: %w", err)
	}

	entry, err := appendEntry(ctx, tx, userID, -amount, reason, balanceAfter)
	if err != nil {
		return ledger.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return ledger.Entry{}, fmt.Errorf("commit debit: %w", err)
	}
	return entry, nil
}

func (r *LedgerRepository) ApplyCredit(ctx context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	if amount <= 0 {
		return ledger.Entry{}, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("begin tx credit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balanceAfter int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO user_balances (user_id, balance, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET balance = user_balances.balance + EXCLUDED.balance, updated_at = NOW()
		 RETURNING balance`,
		userID, amount,
	).Scan(&balanceAfter)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("apply credit: %w", err)
	}

	entry, err := appendEntry(ctx, tx, userID, amount, reason, balanceAfter)
	if err != nil {
		return ledger.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return ledger.Entry{}, fmt.Errorf("commit credit: %w", err)
	}
	return entry, nil
}

func (r *LedgerRepository) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.db.QueryRowxContext(ctx,
		`SELECT balance FROM user_balances WHERE user_id = $1`, userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) Entries(ctx context.Context, userID string, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := querybuilder.
		Select("id", "user_id", "delta", "reason", "balance_after", "created_at").
		From("credit_ledger_entries").
		Where(querybuilder.Eq("user_id", userID)).
		OrderBy("id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ledger entries query: %w", err)
	}

	var rows []ledgerEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	out := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledger.Entry{
			ID:           row.ID,
			UserID:       row.UserID,
			Delta:        row.Delta,
			Reason:       row.Reason,
			BalanceAfter: row.BalanceAfter,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, nil
}

func appendEntry(ctx context.Context, tx *sqlx.Tx, userID string, delta int64, reason string, balanceAfter int64) (ledger.Entry, error) {
	var row ledgerEntryTableModel
	err := tx.QueryRowxContext(ctx,
		`INSERT INTO credit_ledger_entries (user_id, delta, reason, balance_after)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, delta, reason, balance_after, created_at`,
		userID, delta, reason, balanceAfter,
	).StructScan(&row)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}

	return ledger.Entry{
		ID:           row.ID,
		UserID:       row.UserID,
		Delta:        row.Delta,
		Reason:       row.Reason,
		BalanceAfter: row.BalanceAfter,
		CreatedAt:    row.CreatedAt,
	}, nil
}
