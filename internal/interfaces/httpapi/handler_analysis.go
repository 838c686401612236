package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/analysis"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/id"
	"github.com/riskibarqy/betslip-analyzer/internal/usecase"
)

var analysisIDGenerator = id.NewRandomGenerator()

type createAnalysisRequest struct {
	ImageB64  string `json:"image_b64" validate:"required"`
	ImageMIME string `json:"image_mime" validate:"omitempty,max=64"`
}

type analysisResponseDTO struct {
	AnalysisID        string                   `json:"analysisId"`
	Selections        []selectionDTO           `json:"selections"`
	Predictions       []analysis.Prediction    `json:"perMatchPredictions"`
	TotalOdds         float64                  `json:"totalOdds"`
	OverallConfidence float64                  `json:"overallConfidence"`
	Recommendations   []string                 `json:"recommendations"`
}

type selectionDTO struct {
	HomeTeam   string  `json:"homeTeam"`
	AwayTeam   string  `json:"awayTeam"`
	League     string  `json:"league"`
	Market     string  `json:"market"`
	Pick       string  `json:"pick"`
	Odds       float64 `json:"odds"`
	Confidence int     `json:"confidence"`
}

// CreateAnalysis runs the full slip pipeline for the calling user.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAnalysis")
	defer span.End()

	userID, err := requestUserID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createAnalysisRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	analysisID, err := analysisIDGenerator.NewID()
	if err != nil {
		h.logger.ErrorContext(ctx, "generate analysis id failed", "error", err.Error())
		writeInternalError(ctx, w)
		return
	}

	final, err := h.analysisService.Analyze(ctx, usecase.AnalyzeInput{
		AnalysisID: analysisID,
		UserID:     userID,
		ImageB64:   strings.TrimSpace(req.ImageB64),
		ImageMIME:  strings.TrimSpace(req.ImageMIME),
		Cost:       h.analysisCost,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "analysis failed", "user_id", userID, "analysis_id", analysisID, "error", err.Error())
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalToDTO(analysisID, final))
}

func finalToDTO(analysisID string, final analysis.Final) analysisResponseDTO {
	selections := make([]selectionDTO, 0, len(final.Selections))
	for _, sel := range final.Selections {
		selections = append(selections, selectionDTO{
			HomeTeam:   sel.Match.HomeTeamRaw,
			AwayTeam:   sel.Match.AwayTeamRaw,
			League:     sel.Match.League,
			Market:     sel.MarketName,
			Pick:       sel.Pick,
			Odds:       sel.Odds,
			Confidence: sel.Confidence,
		})
	}

	return analysisResponseDTO{
		AnalysisID:        analysisID,
		Selections:        selections,
		Predictions:       final.Predictions,
		TotalOdds:         final.TotalOdds,
		OverallConfidence: final.OverallConfidence,
		Recommendations:   final.Recommendations,
	}
}
