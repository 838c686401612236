package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	"github.com/riskibarqy/betslip-analyzer/internal/usecase"
)

type balanceDTO struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

type ledgerEntryDTO struct {
	ID           int64  `json:"id"`
	Delta        int64  `json:"delta"`
	Reason       string `json:"reason"`
	BalanceAfter int64  `json:"balanceAfter"`
	CreatedAt    string `json:"createdAt"`
}

type topUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBalance")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	balance, err := h.ledgerService.Balance(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get balance failed", "user_id", userID, "error", err.Error())
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, balanceDTO{UserID: userID, Balance: balance})
}

func (h *Handler) ListLedgerEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLedgerEntries")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.ledgerService.Entries(ctx, userID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list ledger entries failed", "user_id", userID, "error", err.Error())
		writeError(ctx, w, err)
		return
	}

	items := make([]ledgerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ledgerEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) TopUpCredits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TopUpCredits")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))

	var req topUpRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.ledgerService.Credit(ctx, userID, req.Amount, ledger.ReasonTopUp)
	if err != nil {
		h.logger.WarnContext(ctx, "top up failed", "user_id", userID, "amount", req.Amount, "error", err.Error())
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerEntryToDTO(entry))
}

func ledgerEntryToDTO(entry ledger.Entry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:           entry.ID,
		Delta:        entry.Delta,
		Reason:       entry.Reason,
		BalanceAfter: entry.BalanceAfter,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}
