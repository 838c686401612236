package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	"github.com/riskibarqy/betslip-analyzer/internal/infrastructure/repository/memory"
)

func TestLedgerServiceDebitMapsInsufficientBalance(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(memory.NewLedgerRepository(), nil)
	ctx := context.Background()

	_, err := svc.Debit(ctx, "u1", 1, ledger.ReasonAnalysis)
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("err = %v, want ErrInsufficientCredit", err)
	}

	entries, err := svc.Entries(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected debit journaled %d entries", len(entries))
	}
}

func TestLedgerServiceDebitAfterTopUp(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(memory.NewLedgerRepository(), nil)
	ctx := context.Background()

	if _, err := svc.Credit(ctx, "u1", 5, ledger.ReasonTopUp); err != nil {
		t.Fatalf("credit: %v", err)
	}

	entry, err := svc.Debit(ctx, "u1", 2, ledger.ReasonAnalysis)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if entry.BalanceAfter != 3 || entry.Delta != -2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	balance, err := svc.Balance(ctx, "u1")
	if err != nil || balance != 3 {
		t.Fatalf("balance = %d err = %v", balance, err)
	}
}

func TestLedgerServiceRefundUsesRefundReason(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(memory.NewLedgerRepository(), nil)
	ctx := context.Background()

	entry, err := svc.Refund(ctx, "u1", 4)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if entry.Reason != ledger.ReasonRefund || entry.Delta != 4 {
		t.Fatalf("unexpected refund entry: %+v", entry)
	}
}

func TestLedgerServiceValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(memory.NewLedgerRepository(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{name: "empty user on debit", call: func() error {
			_, err := svc.Debit(ctx, " ", 1, ledger.ReasonAnalysis)
			return err
		}},
		{name: "zero amount on credit", call: func() error {
			_, err := svc.Credit(ctx, "u1", 0, ledger.ReasonTopUp)
			return err
		}},
		{name: "negative amount on debit", call: func() error {
			_, err := svc.Debit(ctx, "u1", -3, ledger.ReasonAnalysis)
			return err
		}},
		{name: "empty reason", call: func() error {
			_, err := svc.Credit(ctx, "u1", 1, "  ")
			return err
		}},
		{name: "empty user on balance", call: func() error {
			_, err := svc.Balance(ctx, "")
			return err
		}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.call(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
