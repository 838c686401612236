package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

const defaultLedgerPageSize = 50

// LedgerService fronts the credit store. Atomicity lives in the repository;
// this layer validates input and maps store errors onto usecase sentinels.
type LedgerService struct {
	repo   ledger.Repository
	logger *logging.Logger
}

func NewLedgerService(repo ledger.Repository, logger *logging.Logger) *LedgerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LedgerService{repo: repo, logger: logger}
}

func (s *LedgerService) Debit(ctx context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "LedgerService.Debit")
	defer span.End()

	userID, reason, err := normalizeLedgerInput(userID, amount, reason)
	if err != nil {
		return ledger.Entry{}, err
	}

	entry, err := s.repo.ApplyDebit(ctx, userID, amount, reason)
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		return ledger.Entry{}, fmt.Errorf("%w: user=%s amount=%d", ErrInsufficientCredit, userID, amount)
	}
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("apply debit: %w", err)
	}

	s.logger.InfoContext(ctx, "credit debited",
		"user_id", userID, "amount", amount, "reason", reason, "balance_after", entry.BalanceAfter)
	return entry, nil
}

func (s *LedgerService) Credit(ctx context.Context, userID string, amount int64, reason string) (ledger.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "LedgerService.Credit")
	defer span.End()

	userID, reason, err := normalizeLedgerInput(userID, amount, reason)
	if err != nil {
		return ledger.Entry{}, err
	}

	entry, err := s.repo.ApplyCredit(ctx, userID, amount, reason)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("apply credit: %w", err)
	}

	s.logger.InfoContext(ctx, "credit granted",
		"user_id", userID, "amount", amount, "reason", reason, "balance_after", entry.BalanceAfter)
	return entry, nil
}

// Refund returns a previously debited amount. It never fails on a balance
// precondition.
func (s *LedgerService) Refund(ctx context.Context, userID string, amount int64) (ledger.Entry, error) {
	return s.Credit(ctx, userID, amount, ledger.ReasonRefund)
}

func (s *LedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

func (s *LedgerService) Entries(ctx context.Context, userID string, limit int) ([]ledger.Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}

	entries, err := s.repo.Entries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

func normalizeLedgerInput(userID string, amount int64, reason string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	reason = strings.TrimSpace(reason)
	if userID == "" {
		return "", "", fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return "", "", fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if reason == "" {
		return "", "", fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	return userID, reason, nil
}
