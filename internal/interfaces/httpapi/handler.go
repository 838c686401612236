package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
	"github.com/riskibarqy/betslip-analyzer/internal/usecase"
)

type Handler struct {
	analysisService *usecase.AnalysisService
	ledgerService   *usecase.LedgerService
	analysisCost    int64
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	analysisService *usecase.AnalysisService,
	ledgerService *usecase.LedgerService,
	analysisCost int64,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if analysisCost <= 0 {
		analysisCost = 1
	}

	return &Handler{
		analysisService: analysisService,
		ledgerService:   ledgerService,
		analysisCost:    analysisCost,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// requestUserID reads the caller identity set by the excluded auth layer.
func requestUserID(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		return "", fmt.Errorf("%w: X-User-ID header is required", usecase.ErrInvalidInput)
	}
	return userID, nil
}
