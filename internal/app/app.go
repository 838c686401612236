package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/betslip-analyzer/external/completion"
	"github.com/riskibarqy/betslip-analyzer/external/statsapi"
	"github.com/riskibarqy/betslip-analyzer/internal/config"
	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	"github.com/riskibarqy/betslip-analyzer/internal/infrastructure/progress"
	cacherepo "github.com/riskibarqy/betslip-analyzer/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/betslip-analyzer/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/betslip-analyzer/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/betslip-analyzer/internal/platform/cache"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/resilience"
	"github.com/riskibarqy/betslip-analyzer/internal/usecase"
)

// NewHTTPServer wires repositories, provider clients, and the analysis
// pipeline into one http.Server. The returned *sqlx.DB is owned by the
// caller and must be closed on shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, *sqlx.DB, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	ledgerRepo := postgres.NewLedgerRepository(db)

	var enrichmentRepo enrichment.Repository = postgres.NewEnrichmentRepository(db)
	if cfg.CacheEnabled {
		enrichmentRepo = cacherepo.NewEnrichmentRepository(enrichmentRepo, basecache.NewStore(cfg.CacheTTL))
	}

	completionClient := completion.NewClient(completion.ClientConfig{
		BaseURL: cfg.CompletionBaseURL,
		APIKey:  cfg.CompletionAPIKey,
		Model:   cfg.CompletionModel,
		Timeout: cfg.CompletionTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CompletionCircuitEnabled,
			FailureThreshold: cfg.CompletionCircuitFailures,
			OpenTimeout:      cfg.CompletionCircuitOpenFor,
			HalfOpenMaxReq:   cfg.CompletionCircuitHalfOpen,
		},
	})

	var stats usecase.StatsProvider
	if cfg.StatsEnabled {
		stats = statsapi.NewClient(statsapi.ClientConfig{
			BaseURL: cfg.StatsBaseURL,
			Token:   cfg.StatsToken,
			Timeout: cfg.StatsTimeout,
			Retry:   resilience.RetryConfig{MaxAttempts: cfg.StatsMaxRetries + 1},
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StatsCircuitEnabled,
				FailureThreshold: cfg.StatsCircuitFailures,
				OpenTimeout:      cfg.StatsCircuitOpenFor,
				HalfOpenMaxReq:   cfg.StatsCircuitHalfOpen,
			},
			RateLimiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
				Quota:       cfg.StatsQuota,
				Window:      cfg.StatsQuotaWindow,
				MinInterval: cfg.StatsMinInterval,
			}),
		})
	}

	var publisher progress.Publisher
	if cfg.ProgressWebhookURL != "" {
		publisher = progress.NewWebhookPublisher(progress.WebhookPublisherConfig{
			Endpoint: cfg.ProgressWebhookURL,
			Token:    cfg.ProgressWebhookToken,
			Timeout:  cfg.ProgressWebhookTimeout,
		}, logger)
	}

	validationSvc := usecase.NewValidationService(completionClient, logger)
	extractionSvc := usecase.NewExtractionService(completionClient, validationSvc, logger)
	enrichmentSvc := usecase.NewEnrichmentService(
		enrichmentRepo,
		completionClient,
		stats,
		usecase.EnrichmentServiceConfig{
			TTLs: enrichment.TTLs{
				Grounded: cfg.EnrichmentGroundedTTL,
				Latent:   cfg.EnrichmentLatentTTL,
				Default:  cfg.EnrichmentDefaultTTL,
			},
			PrimaryTimeout: cfg.EnrichmentPrimaryTimeout,
			LatentTimeout:  cfg.EnrichmentLatentTimeout,
			Retry:          resilience.RetryConfig{MaxAttempts: cfg.EnrichmentMaxRetries},
		},
		logger,
	)
	scoringSvc := usecase.NewScoringService(completionClient, logger)
	ledgerSvc := usecase.NewLedgerService(ledgerRepo, logger)

	analysisSvc := usecase.NewAnalysisService(
		extractionSvc,
		enrichmentSvc,
		scoringSvc,
		ledgerSvc,
		publisher,
		logger,
	)
	analysisSvc.SetMaxEnrichmentWorkers(cfg.EnrichmentWorkers)

	handler := httpapi.NewHandler(analysisSvc, ledgerSvc, cfg.AnalysisCost, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		db.Close()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, db, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}
