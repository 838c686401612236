package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
)

// LedgerRepository keeps balances and the journal in memory. The mutex
// serializes debit check-and-write, giving the same guarantee the postgres
// implementation gets from its transaction.
type LedgerRepository struct {
	mu       sync.Mutex
	balances map[string]int64
	journal  []ledger.Entry
	nextID   int64
	now      func() time.Time
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		balances: make(map[string]int64),
		nextID:   1,
		now:      time.Now,
	}
}

func (r *LedgerRepository) ApplyDebit(_ context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	if amount <= 0 {
		return ledger.Entry{}, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	balance := r.balances[userID]
	if balance < amount {
		return ledger.Entry{}, ledger.ErrInsufficientBalance
	}

	balance -= amount
	r.balances[userID] = balance
	return r.append(userID, -amount, reason, balance), nil
}

func (r *LedgerRepository) ApplyCredit(_ context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	if amount <= 0 {
		return ledger.Entry{}, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	balance := r.balances[userID] + amount
	r.balances[userID] = balance
	return r.append(userID, amount, reason, balance), nil
}

func (r *LedgerRepository) Balance(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID], nil
}

func (r *LedgerRepository) Entries(_ context.Context, userID string, limit int) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ledger.Entry, 0, limit)
	for i := len(r.journal) - 1; i >= 0; i-- {
		if r.journal[i].UserID != userID {
			continue
		}
		out = append(out, r.journal[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *LedgerRepository) append(userID string, delta int64, reason string, balanceAfter int64) ledger.Entry {
	entry := ledger.Entry{
		ID:           r.nextID,
		UserID:       userID,
		Delta:        delta,
		Reason:       reason,
		BalanceAfter: balanceAfter,
		CreatedAt:    r.now(),
	}
	r.nextID++
	r.journal = append(r.journal, entry)
	return entry
}
