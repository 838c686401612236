package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/analysis"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/ledger"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/match"
	"github.com/riskibarqy/betslip-analyzer/internal/infrastructure/progress"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

const defaultEnrichmentWorkers = 4

type AnalyzeInput struct {
	AnalysisID string
	UserID     string
	ImageB64   string
	ImageMIME  string
	Cost       int64
}

// AnalysisService orchestrates one slip analysis end to end: credit debit,
// extraction, enrichment fan-out, scoring, and refund on failure.
type AnalysisService struct {
	extractor  *ExtractionService
	enricher   *EnrichmentService
	scorer     *ScoringService
	credits    *LedgerService
	publisher  progress.Publisher
	logger     *logging.Logger
	maxWorkers int
}

func NewAnalysisService(
	extractor *ExtractionService,
	enricher *EnrichmentService,
	scorer *ScoringService,
	credits *LedgerService,
	publisher progress.Publisher,
	logger *logging.Logger,
) *AnalysisService {
	if publisher == nil {
		publisher = progress.NopPublisher{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisService{
		extractor:  extractor,
		enricher:   enricher,
		scorer:     scorer,
		credits:    credits,
		publisher:  publisher,
		logger:     logger,
		maxWorkers: defaultEnrichmentWorkers,
	}
}

// SetMaxEnrichmentWorkers bounds the enrichment fan-out.
func (s *AnalysisService) SetMaxEnrichmentWorkers(n int) {
	if n > 0 {
		s.maxWorkers = n
	}
}

// Analyze runs the pipeline for one slip. The debit happens before any
// provider call so a broke user wastes no work; every failure after the
// debit refunds the full cost.
func (s *AnalysisService) Analyze(ctx context.Context, input AnalyzeInput) (analysis.Final, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.Analyze")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return analysis.Final{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ImageB64) == "" {
		return analysis.Final{}, fmt.Errorf("%w: slip image is required", ErrInvalidInput)
	}
	if input.Cost <= 0 {
		return analysis.Final{}, fmt.Errorf("%w: analysis cost must be positive", ErrInvalidInput)
	}

	if _, err := s.credits.Debit(ctx, input.UserID, input.Cost, ledger.ReasonAnalysis); err != nil {
		return analysis.Final{}, err
	}

	final, err := s.run(ctx, input)
	if err != nil {
		s.publish(ctx, input.AnalysisID, progress.StageFailed, 100, err.Error())
		if _, refundErr := s.credits.Refund(ctx, input.UserID, input.Cost); refundErr != nil {
			s.logger.ErrorContext(ctx, "refund after failed analysis did not apply",
				"user_id", input.UserID, "amount", input.Cost, "error", refundErr.Error())
		}
		return analysis.Final{}, err
	}

	s.publish(ctx, input.AnalysisID, progress.StageComplete, 100, "")
	return final, nil
}

func (s *AnalysisService) run(ctx context.Context, input AnalyzeInput) (analysis.Final, error) {
	s.publish(ctx, input.AnalysisID, progress.StageExtraction, 5, "")
	matches, err := s.extractor.Extract(ctx, input.ImageB64, input.ImageMIME)
	if err != nil {
		return analysis.Final{}, err
	}
	s.publish(ctx, input.AnalysisID, progress.StageValidation, 25,
		fmt.Sprintf("%d matches detected", len(matches)))

	enriched, err := s.enrichAll(ctx, input.AnalysisID, matches)
	if err != nil {
		return analysis.Final{}, err
	}

	s.publish(ctx, input.AnalysisID, progress.StageScoring, 85, "")
	final, err := s.scorer.Score(ctx, matches, enriched)
	if err != nil {
		return analysis.Final{}, err
	}
	return final, nil
}

// enrichAll resolves every match's enrichment record concurrently. Each
// fetch carries its own timeout and always resolves to some record, so one
// slow match never stalls its siblings; a worker error only surfaces when
// the cache store itself failed.
func (s *AnalysisService) enrichAll(ctx context.Context, analysisID string, matches []match.Detected) (map[string]enrichment.Data, error) {
	workerCount := s.maxWorkers
	if workerCount > len(matches) {
		workerCount = len(matches)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create enrichment pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		workers  sync.WaitGroup
		enriched = make(map[string]enrichment.Data, len(matches))
		firstErr error
		done     int
	)

	for _, m := range matches {
		m := m
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			data, enrichErr := s.enricher.Enrich(ctx, m)

			mu.Lock()
			defer mu.Unlock()
			if enrichErr != nil {
				if firstErr == nil {
					firstErr = enrichErr
				}
				return
			}
			enriched[m.Key] = data
			done++
			percent := 25 + 60*done/len(matches)
			s.publish(ctx, analysisID, progress.StageEnrichment, percent,
				fmt.Sprintf("%d/%d matches enriched", done, len(matches)))
		}); err != nil {
			workers.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit enrichment task: %w", err)
			}
			mu.Unlock()
		}
	}
	workers.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return enriched, nil
}

func (s *AnalysisService) publish(ctx context.Context, analysisID, stage string, percent int, detail string) {
	s.publisher.Publish(ctx, progress.Event{
		AnalysisID: analysisID,
		Stage:      stage,
		Percent:    percent,
		Detail:     detail,
	})
}
