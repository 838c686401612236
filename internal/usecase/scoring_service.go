package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/analysis"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/match"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/jsonextract"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

// Signal weights for the aggregation prompt. They must sum to 1.
const (
	weightForm          = 0.40
	weightHeadToHead    = 0.25
	weightInjuries      = 0.15
	weightStanding      = 0.10
	weightHomeAdvantage = 0.10
)

const neutralConfidence = 50

// ScoringService combines each match's enrichment record into per-market
// predictions and folds the batch into one final recommendation set.
type ScoringService struct {
	completer CompletionClient
	logger    *logging.Logger
}

func NewScoringService(completer CompletionClient, logger *logging.Logger) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{completer: completer, logger: logger}
}

type scoringPayload struct {
	Markets map[string]struct {
		Pick          string             `json:"pick"`
		Probabilities map[string]float64 `json:"probabilities"`
	} `json:"markets"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Score produces the final analysis for a batch of matches and their
// enrichment records. Each match gets one aggregation call; a call or parse
// failure degrades that match to a neutral prediction, never the batch.
func (s *ScoringService) Score(ctx context.Context, matches []match.Detected, enriched map[string]enrichment.Data) (analysis.Final, error) {
	ctx, span := startUsecaseSpan(ctx, "ScoringService.Score")
	defer span.End()

	if len(matches) == 0 {
		return analysis.Final{}, fmt.Errorf("%w: no matches to score", ErrInvalidInput)
	}

	predictions := make([]analysis.Prediction, 0, len(matches))
	for _, m := range matches {
		predictions = append(predictions, s.scoreOne(ctx, m, enriched[m.Key]))
	}

	final := analysis.Final{
		Predictions: predictions,
		Selections:  make([]analysis.Selection, 0, len(matches)),
	}

	totalOdds := 1.0
	confidenceSum := 0
	for i, pred := range predictions {
		if pred.Confidence < analysis.SelectionThreshold {
			continue
		}

		m := matches[i]
		marketName, picked := bestMarket(pred)
		selection := analysis.Selection{
			Match:      m,
			MarketName: marketName,
			Pick:       picked.Pick,
			Odds:       m.Odds,
			Confidence: pred.Confidence,
		}
		final.Selections = append(final.Selections, selection)
		confidenceSum += pred.Confidence
		if m.Odds > 0 {
			totalOdds *= m.Odds
		}

		final.Recommendations = append(final.Recommendations, fmt.Sprintf(
			"%s vs %s: %s (%s, confidence %d)",
			m.HomeTeamRaw, m.AwayTeamRaw, picked.Pick, marketName, pred.Confidence,
		))
	}

	if len(final.Selections) > 0 {
		final.TotalOdds = totalOdds
		final.OverallConfidence = float64(confidenceSum) / float64(len(final.Selections))
	}

	s.logger.InfoContext(ctx, "analysis scored",
		"match_count", len(matches),
		"selection_count", len(final.Selections),
		"overall_confidence", final.OverallConfidence,
	)
	return final, nil
}

func (s *ScoringService) scoreOne(ctx context.Context, m match.Detected, data enrichment.Data) analysis.Prediction {
	pred := analysis.Prediction{
		MatchKey: m.Key,
		HomeTeam: m.HomeTeamRaw,
		AwayTeam: m.AwayTeamRaw,
		Signals: map[string]float64{
			"form":           weightForm,
			"head_to_head":   weightHeadToHead,
			"injuries":       weightInjuries,
			"standing":       weightStanding,
			"home_advantage": weightHomeAdvantage,
		},
	}

	payload, err := s.aggregate(ctx, m, data)
	if err != nil {
		s.logger.WarnContext(ctx, "aggregation degraded to neutral prediction",
			"match_key", m.Key, "error", err.Error())
		pred.Markets = neutralMarkets()
		pred.Confidence = neutralConfidence
		pred.Degraded = true
		return pred
	}

	pred.Markets = make(map[string]analysis.Market, len(payload.Markets))
	for name, market := range payload.Markets {
		pred.Markets[name] = analysis.Market{
			Pick:          market.Pick,
			Probabilities: market.Probabilities,
		}
	}
	if len(pred.Markets) == 0 {
		pred.Markets = neutralMarkets()
		pred.Confidence = neutralConfidence
		pred.Degraded = true
		return pred
	}

	pred.Confidence = clampConfidence(payload.Confidence)
	// Data that itself came from a degraded tier cannot back a higher claim
	// than its own record does.
	if data.Confidence > 0 && pred.Confidence > data.Confidence {
		pred.Confidence = data.Confidence
	}
	if data.Provider == enrichment.ProviderDefault {
		pred.Degraded = true
	}
	return pred
}

func (s *ScoringService) aggregate(ctx context.Context, m match.Detected, data enrichment.Data) (scoringPayload, error) {
	if s.completer == nil {
		return scoringPayload{}, fmt.Errorf("%w: no completion client", ErrDependencyUnavailable)
	}

	resp, err := s.completer.Complete(ctx, completion.Request{
		System:      "You are a football betting analyst. Weigh the given signals exactly as instructed and answer strictly in JSON.",
		Prompt:      scoringPrompt(m, data),
		Temperature: 0.1,
	})
	if err != nil {
		return scoringPayload{}, fmt.Errorf("aggregation completion: %w", err)
	}

	parsed := jsonextract.Parse[scoringPayload](resp.Text)
	if !parsed.Ok() {
		return scoringPayload{}, fmt.Errorf("parse aggregation payload: %w", parsed.Err)
	}
	return parsed.Value, nil
}

func scoringPrompt(m match.Detected, data enrichment.Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s vs %s", m.HomeTeamRaw, m.AwayTeamRaw)
	if strings.TrimSpace(m.League) != "" {
		fmt.Fprintf(&b, " (%s)", m.League)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Home form: %s\n", data.HomeForm)
	fmt.Fprintf(&b, "Away form: %s\n", data.AwayForm)
	fmt.Fprintf(&b, "Head to head: %s\n", data.HeadToHead)
	fmt.Fprintf(&b, "Injuries: %s\n", data.Injuries)
	fmt.Fprintf(&b, "League standing: %s\n", data.LeagueStanding)

	fmt.Fprintf(&b,
		"Weigh the signals: recent form %.0f%%, head-to-head %.0f%%, injuries %.0f%%, league standing %.0f%%, home advantage %.0f%%.\n",
		weightForm*100, weightHeadToHead*100, weightInjuries*100, weightStanding*100, weightHomeAdvantage*100,
	)
	b.WriteString(`Answer with JSON only:
{"markets": {"result": {"pick": "home|draw|away", "probabilities": {"home": 0.5, "draw": 0.3, "away": 0.2}}, "btts": {"pick": "yes|no", "probabilities": {"yes": 0.5, "no": 0.5}}, "over_under_2_5": {"pick": "over|under", "probabilities": {"over": 0.5, "under": 0.5}}}, "confidence": 0-100, "reasoning": "..."}`)
	return b.String()
}

// neutralMarkets is the even-split fallback when aggregation output cannot
// be used. Its confidence of 50 keeps the match out of the selections.
func neutralMarkets() map[string]analysis.Market {
	return map[string]analysis.Market{
		analysis.MarketResult: {
			Pick:          "draw",
			Probabilities: map[string]float64{"home": 1.0 / 3, "draw": 1.0 / 3, "away": 1.0 / 3},
		},
		analysis.MarketBTTS: {
			Pick:          "yes",
			Probabilities: map[string]float64{"yes": 0.5, "no": 0.5},
		},
		analysis.MarketOverUnder: {
			Pick:          "over",
			Probabilities: map[string]float64{"over": 0.5, "under": 0.5},
		},
	}
}

// bestMarket picks the market whose chosen outcome the model is most sure
// about, preferring the result market on ties.
func bestMarket(pred analysis.Prediction) (string, analysis.Market) {
	if market, ok := pred.Markets[analysis.MarketResult]; ok {
		best, bestName, bestProb := market, analysis.MarketResult, market.Probabilities[market.Pick]
		for name, candidate := range pred.Markets {
			if candidate.Probabilities[candidate.Pick] > bestProb {
				best, bestName, bestProb = candidate, name, candidate.Probabilities[candidate.Pick]
			}
		}
		return bestName, best
	}
	for name, market := range pred.Markets {
		return name, market
	}
	return "", analysis.Market{}
}

func clampConfidence(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
