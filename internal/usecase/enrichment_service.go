package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/external/statsapi"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/match"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/jsonextract"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/resilience"
)

// latentConfidenceCeiling caps records built from the model's trained
// knowledge alone.
const latentConfidenceCeiling = 60

// latentSource is what the latent tier self-reports, so the record keeps a
// non-empty source list and its capped confidence survives normalization.
const latentSource = "model:latent-knowledge"

// StatsProvider is the slice of the statistics API the enrichment chain
// consumes. Every call may fail or time out; failures only shrink the
// grounding context, they never fail the chain.
type StatsProvider interface {
	GetForm(ctx context.Context, teamID string) (statsapi.TeamForm, error)
	GetHeadToHead(ctx context.Context, teamA, teamB string) (statsapi.HeadToHead, error)
	GetStanding(ctx context.Context, teamID, league, season string) (statsapi.Standing, error)
}

type EnrichmentServiceConfig struct {
	TTLs           enrichment.TTLs
	PrimaryTimeout time.Duration
	LatentTimeout  time.Duration
	Retry          resilience.RetryConfig
}

// EnrichmentService acquires statistical data for a match: fresh cache hit,
// else a grounded completion fetch, else a latent fetch, else a default
// record. Whatever tier resolves is written back unconditionally, so a hard
// failure stays sticky until the TTL expires instead of being retried on
// every request.
type EnrichmentService struct {
	cache     enrichment.Repository
	completer CompletionClient
	stats     StatsProvider
	cfg       EnrichmentServiceConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewEnrichmentService(
	cache enrichment.Repository,
	completer CompletionClient,
	stats StatsProvider,
	cfg EnrichmentServiceConfig,
	logger *logging.Logger,
) *EnrichmentService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = 60 * time.Second
	}
	if cfg.LatentTimeout <= 0 {
		cfg.LatentTimeout = 30 * time.Second
	}
	cfg.Retry = resilience.NormalizeRetryConfig(cfg.Retry)

	return &EnrichmentService{
		cache:     cache,
		completer: completer,
		stats:     stats,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Enrich resolves the enrichment record for one match. It always returns a
// well-formed record; the error is reserved for cache-store failures.
func (s *EnrichmentService) Enrich(ctx context.Context, m match.Detected) (enrichment.Data, error) {
	ctx, span := startUsecaseSpan(ctx, "EnrichmentService.Enrich")
	defer span.End()

	if cached, ok, err := s.cache.Get(ctx, m.Key); err != nil {
		return enrichment.Data{}, fmt.Errorf("read enrichment cache key=%s: %w", m.Key, err)
	} else if ok && cached.Fresh(s.now(), s.cfg.TTLs) {
		return cached, nil
	}

	data, err := s.fetchGrounded(ctx, m)
	if err != nil {
		s.logger.WarnContext(ctx, "grounded enrichment fetch degraded to latent tier",
			"match_key", m.Key, "error", err.Error())
		data, err = s.fetchLatent(ctx, m)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "latent enrichment fetch degraded to default record",
			"match_key", m.Key, "error", err.Error())
		data = enrichment.DefaultRecord(m.Key, s.now())
	}

	data.MatchKey = m.Key
	data.FetchedAt = s.now()
	data = data.Normalize()

	if err := s.cache.Put(ctx, data); err != nil {
		return enrichment.Data{}, fmt.Errorf("write enrichment cache key=%s: %w", m.Key, err)
	}
	return data, nil
}

type enrichmentPayload struct {
	HomeForm       string   `json:"home_form"`
	AwayForm       string   `json:"away_form"`
	HeadToHead     string   `json:"head_to_head"`
	Injuries       string   `json:"injuries"`
	LeagueStanding string   `json:"league_standing"`
	Confidence     int      `json:"confidence"`
	Sources        []string `json:"sources"`
}

func (s *EnrichmentService) fetchGrounded(ctx context.Context, m match.Detected) (enrichment.Data, error) {
	if s.completer == nil {
		return enrichment.Data{}, fmt.Errorf("%w: no completion client", ErrDependencyUnavailable)
	}

	statsContext := s.buildStatsContext(ctx, m)

	resp, err := resilience.RetryWithBackoff(ctx, s.cfg.Retry, func(ctx context.Context) (completion.Response, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.PrimaryTimeout)
		defer cancel()
		return s.completer.Complete(callCtx, completion.Request{
			System:      "You research football matches with live web search and answer strictly in JSON.",
			Prompt:      enrichmentPrompt(m, statsContext, true),
			Grounding:   true,
			Temperature: 0.2,
		})
	})
	if err != nil {
		return enrichment.Data{}, fmt.Errorf("grounded fetch: %w", err)
	}

	parsed := jsonextract.Parse[enrichmentPayload](resp.Text)
	if !parsed.Ok() {
		return enrichment.Data{}, fmt.Errorf("parse grounded payload: %w", parsed.Err)
	}

	data := payloadToData(m.Key, parsed.Value)
	data.Provider = enrichment.ProviderGrounded
	data.Sources = append(data.Sources, resp.Sources...)
	return data, nil
}

func (s *EnrichmentService) fetchLatent(ctx context.Context, m match.Detected) (enrichment.Data, error) {
	if s.completer == nil {
		return enrichment.Data{}, fmt.Errorf("%w: no completion client", ErrDependencyUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.LatentTimeout)
	defer cancel()

	resp, err := s.completer.Complete(callCtx, completion.Request{
		System:      "You recall football statistics from your training data and answer strictly in JSON.",
		Prompt:      enrichmentPrompt(m, "", false),
		Temperature: 0.2,
	})
	if err != nil {
		return enrichment.Data{}, fmt.Errorf("latent fetch: %w", err)
	}

	parsed := jsonextract.Parse[enrichmentPayload](resp.Text)
	if !parsed.Ok() {
		return enrichment.Data{}, fmt.Errorf("parse latent payload: %w", parsed.Err)
	}

	data := payloadToData(m.Key, parsed.Value)
	data.Provider = enrichment.ProviderLatent
	if data.Confidence > latentConfidenceCeiling {
		data.Confidence = latentConfidenceCeiling
	}
	data.Sources = []string{latentSource}
	return data, nil
}

// buildStatsContext collects whatever the statistics provider can answer
// within the request budget. Partial or empty context is fine.
func (s *EnrichmentService) buildStatsContext(ctx context.Context, m match.Detected) string {
	if s.stats == nil {
		return ""
	}

	var b strings.Builder

	if form, err := s.stats.GetForm(ctx, m.HomeTeam); err == nil && len(form.Results) > 0 {
		fmt.Fprintf(&b, "home recent results: %s\n", strings.Join(form.Results, ""))
	}
	if form, err := s.stats.GetForm(ctx, m.AwayTeam); err == nil && len(form.Results) > 0 {
		fmt.Fprintf(&b, "away recent results: %s\n", strings.Join(form.Results, ""))
	}
	if h2h, err := s.stats.GetHeadToHead(ctx, m.HomeTeam, m.AwayTeam); err == nil && h2h.Played > 0 {
		fmt.Fprintf(&b, "head to head: played=%d home_wins=%d away_wins=%d draws=%d\n",
			h2h.Played, h2h.WinsA, h2h.WinsB, h2h.Draws)
	}
	if standing, err := s.stats.GetStanding(ctx, m.HomeTeam, m.League, ""); err == nil && standing.Position > 0 {
		fmt.Fprintf(&b, "home league position: %d (%d pts)\n", standing.Position, standing.Points)
	}
	if standing, err := s.stats.GetStanding(ctx, m.AwayTeam, m.League, ""); err == nil && standing.Position > 0 {
		fmt.Fprintf(&b, "away league position: %d (%d pts)\n", standing.Position, standing.Points)
	}

	return b.String()
}

func enrichmentPrompt(m match.Detected, statsContext string, grounded bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s vs %s", m.HomeTeamRaw, m.AwayTeamRaw)
	if strings.TrimSpace(m.League) != "" {
		fmt.Fprintf(&b, " (%s)", m.League)
	}
	if m.Date != nil {
		fmt.Fprintf(&b, " on %s", m.Date.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if statsContext != "" {
		b.WriteString("Known statistics:\n")
		b.WriteString(statsContext)
	}

	b.WriteString(`Provide the current statistical picture for this match.
Answer with JSON only:
{"home_form": "...", "away_form": "...", "head_to_head": "...", "injuries": "...", "league_standing": "...", "confidence": 0-100, "sources": ["..."]}`)
	if !grounded {
		b.WriteString("\nUse only knowledge you are certain of; say \"unavailable\" for anything you cannot recall.")
	}
	return b.String()
}

func payloadToData(matchKey string, p enrichmentPayload) enrichment.Data {
	return enrichment.Data{
		MatchKey:       matchKey,
		HomeForm:       fieldOrUnavailable(p.HomeForm),
		AwayForm:       fieldOrUnavailable(p.AwayForm),
		HeadToHead:     fieldOrUnavailable(p.HeadToHead),
		Injuries:       fieldOrUnavailable(p.Injuries),
		LeagueStanding: fieldOrUnavailable(p.LeagueStanding),
		Confidence:     p.Confidence,
		Sources:        p.Sources,
	}
}

func fieldOrUnavailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return enrichment.Unavailable
	}
	return value
}
