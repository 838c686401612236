package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/match"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/jsonextract"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

const extractionSystemPrompt = "You read betting slips. List every match printed on the slip. " +
	"Answer strictly in JSON with no commentary."

const extractionUserPrompt = `Extract all matches from this betting slip image.
Answer with JSON only:
{"matches": [{"home_team": "...", "away_team": "...", "league": "...", "date": "2026-01-31", "odds": 1.85}]}
Omit date and odds when they are not printed on the slip.`

// ExtractionService turns a slip image into structured detected matches via
// one completion call.
type ExtractionService struct {
	completer CompletionClient
	validator *ValidationService
	logger    *logging.Logger
}

func NewExtractionService(completer CompletionClient, validator *ValidationService, logger *logging.Logger) *ExtractionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExtractionService{
		completer: completer,
		validator: validator,
		logger:    logger,
	}
}

type extractedMatchPayload struct {
	HomeTeam string  `json:"home_team"`
	AwayTeam string  `json:"away_team"`
	League   string  `json:"league"`
	Date     string  `json:"date"`
	Odds     float64 `json:"odds"`
}

type extractionPayload struct {
	Matches []extractedMatchPayload `json:"matches"`
}

// Extract reads the slip image and returns the deduplicated matches. A slip
// that yields zero parseable matches is a hard failure.
func (s *ExtractionService) Extract(ctx context.Context, imageB64, imageMIME string) ([]match.Detected, error) {
	ctx, span := startUsecaseSpan(ctx, "ExtractionService.Extract")
	defer span.End()

	if strings.TrimSpace(imageB64) == "" {
		return nil, fmt.Errorf("%w: slip image is required", ErrInvalidInput)
	}
	if s.completer == nil {
		return nil, fmt.Errorf("%w: no completion client", ErrDependencyUnavailable)
	}

	resp, err := s.completer.Complete(ctx, completion.Request{
		System:      extractionSystemPrompt,
		Prompt:      extractionUserPrompt,
		ImageB64:    imageB64,
		ImageMIME:   imageMIME,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	parsed := jsonextract.Parse[extractionPayload](resp.Text)
	if !parsed.Ok() {
		s.logger.WarnContext(ctx, "slip extraction output did not parse", "error", parsed.Err.Error())
		return nil, fmt.Errorf("%w: unparseable extractor output", ErrExtractionFailed)
	}

	detected := make([]match.Detected, 0, len(parsed.Value.Matches))
	for _, raw := range parsed.Value.Matches {
		home := strings.TrimSpace(raw.HomeTeam)
		away := strings.TrimSpace(raw.AwayTeam)
		if home == "" || away == "" {
			continue
		}
		detected = append(detected, match.NewDetected(raw.League, home, away, parseMatchDate(raw.Date), raw.Odds))
	}

	if s.validator != nil {
		detected = s.validator.Dedupe(ctx, detected)
	}

	if len(detected) == 0 {
		return nil, fmt.Errorf("%w: slip yielded no matches", ErrExtractionFailed)
	}

	s.logger.InfoContext(ctx, "slip extracted", "match_count", len(detected))
	return detected, nil
}

func parseMatchDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02.01.2006", "02/01/2006"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}
