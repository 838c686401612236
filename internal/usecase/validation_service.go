package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/match"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/fuzzy"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/jsonextract"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

const (
	sameMatchThreshold = 0.85
	ambiguityFloor     = 0.60
)

// CompletionClient is the slice of the completion provider the pipeline
// services consume.
type CompletionClient interface {
	Complete(ctx context.Context, req completion.Request) (completion.Response, error)
}

// ValidationService decides whether two detected matches denote the same
// fixture. Clear cases resolve on fuzzy similarity alone; ambiguous pairs
// get one disambiguation call to the completion provider.
type ValidationService struct {
	completer CompletionClient
	logger    *logging.Logger
	timeout   time.Duration
}

func NewValidationService(completer CompletionClient, logger *logging.Logger) *ValidationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ValidationService{
		completer: completer,
		logger:    logger,
		timeout:   10 * time.Second,
	}
}

// Similarity exposes the raw score for one name pair.
func (s *ValidationService) Similarity(a, b string) float64 {
	return fuzzy.Similarity(a, b)
}

// IsSameMatch compares home against home and away against away, in that
// order. Both pairs at or above the threshold is a match; either pair below
// the ambiguity floor is a mismatch; anything in between is ambiguous and
// goes to the disambiguation call. A failed or timed-out disambiguation call
// fails open and treats the pair as a match rather than blocking the
// pipeline.
func (s *ValidationService) IsSameMatch(ctx context.Context, candidate, reference match.Detected) bool {
	homeScore := fuzzy.Similarity(candidate.HomeTeam, reference.HomeTeam)
	awayScore := fuzzy.Similarity(candidate.AwayTeam, reference.AwayTeam)

	if homeScore >= sameMatchThreshold && awayScore >= sameMatchThreshold {
		return true
	}
	if homeScore <= ambiguityFloor || awayScore <= ambiguityFloor {
		return false
	}

	same, err := s.disambiguate(ctx, candidate, reference)
	if err != nil {
		s.logger.WarnContext(ctx, "disambiguation call failed, failing open",
			"candidate", candidate.Key,
			"reference", reference.Key,
			"home_score", homeScore,
			"away_score", awayScore,
			"error", err.Error(),
		)
		return true
	}
	return same
}

type disambiguationVerdict struct {
	SameMatch bool `json:"same_match"`
}

func (s *ValidationService) disambiguate(ctx context.Context, candidate, reference match.Detected) (bool, error) {
	if s.completer == nil {
		return false, fmt.Errorf("%w: no completion client", ErrDependencyUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var prompt strings.Builder
	prompt.WriteString("Do these two fixtures refer to the same football match?\n")
	fmt.Fprintf(&prompt, "Fixture 1: %q vs %q\n", candidate.HomeTeamRaw, candidate.AwayTeamRaw)
	fmt.Fprintf(&prompt, "Fixture 2: %q vs %q\n", reference.HomeTeamRaw, reference.AwayTeamRaw)
	prompt.WriteString("Answer with JSON only: {\"same_match\": true|false}")

	resp, err := s.completer.Complete(ctx, completion.Request{
		System:      "You resolve whether two team-name pairs denote the same fixture. Answer strictly in JSON.",
		Prompt:      prompt.String(),
		Temperature: 0,
		MaxTokens:   32,
	})
	if err != nil {
		return false, fmt.Errorf("disambiguation completion: %w", err)
	}

	parsed := jsonextract.Parse[disambiguationVerdict](resp.Text)
	if !parsed.Ok() {
		return false, fmt.Errorf("parse disambiguation verdict: %w", parsed.Err)
	}
	return parsed.Value.SameMatch, nil
}

// Dedupe drops later entries that denote the same fixture as an earlier one.
func (s *ValidationService) Dedupe(ctx context.Context, matches []match.Detected) []match.Detected {
	kept := make([]match.Detected, 0, len(matches))
	for _, candidate := range matches {
		duplicate := false
		for _, existing := range kept {
			if candidate.Key == existing.Key || s.IsSameMatch(ctx, candidate, existing) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}
