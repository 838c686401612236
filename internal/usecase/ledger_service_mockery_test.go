package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	ledgermock "github.com/riskibarqy/betslip-analyzer/internal/mocks/domain/ledger"
)

func TestLedgerService_Debit_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := ledgermock.NewRepository(t)
	service := NewLedgerService(repo, nil)

	want := ledger.Entry{ID: 1, UserID: "u-1", Delta: -2, Reason: ledger.ReasonAnalysis, BalanceAfter: 3}
	repo.
		On("ApplyDebit", mock.Anything, "u-1", int64(2), ledger.ReasonAnalysis).
		Return(want, nil).
		Once()

	got, err := service.Debit(ctx, "u-1", 2, ledger.ReasonAnalysis)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got.BalanceAfter != want.BalanceAfter {
		t.Fatalf("unexpected balance after: got=%d want=%d", got.BalanceAfter, want.BalanceAfter)
	}
}

func TestLedgerService_Debit_InsufficientUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := ledgermock.NewRepository(t)
	service := NewLedgerService(repo, nil)

	repo.
		On("ApplyDebit", mock.Anything, "u-1", int64(5), ledger.ReasonAnalysis).
		Return(ledger.Entry{}, ledger.ErrInsufficientBalance).
		Once()

	_, err := service.Debit(ctx, "u-1", 5, ledger.ReasonAnalysis)
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("expected ErrInsufficientCredit, got %v", err)
	}
}

func TestLedgerService_Refund_UsesRefundReasonUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := ledgermock.NewRepository(t)
	service := NewLedgerService(repo, nil)

	want := ledger.Entry{ID: 2, UserID: "u-1", Delta: 2, Reason: ledger.ReasonRefund, BalanceAfter: 5}
	repo.
		On("ApplyCredit", mock.Anything, "u-1", int64(2), ledger.ReasonRefund).
		Return(want, nil).
		Once()

	got, err := service.Refund(ctx, "u-1", 2)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got.Reason != ledger.ReasonRefund {
		t.Fatalf("unexpected reason: %s", got.Reason)
	}
}
