package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/querybuilder"
)

// EnrichmentRepository is the durable enrichment cache. Put upserts by match
// key; records survive restarts so a sticky default record keeps suppressing
// refetches until its TTL expires.
type EnrichmentRepository struct {
	db *sqlx.DB
}

func NewEnrichmentRepository(db *sqlx.DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

func (r *EnrichmentRepository) Get(ctx context.Context, matchKey string) (enrichment.Data, bool, error) {
	if matchKey == "" {
		return enrichment.Data{}, false, nil
	}

	var row enrichmentTableModel
	err := r.db.QueryRowxContext(ctx,
		`SELECT match_key, home_form, away_form, head_to_head, injuries,
		        league_standing, confidence, sources, provider, fetched_at
		   FROM enrichment_records
		  WHERE match_key = $1`,
		matchKey,
	).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return enrichment.Data{}, false, nil
	}
	if err != nil {
		return enrichment.Data{}, false, fmt.Errorf("read enrichment record: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *EnrichmentRepository) Put(ctx context.Context, data enrichment.Data) error {
	if data.MatchKey == "" {
		return nil
	}

	row := enrichmentTableModel{
		MatchKey:       data.MatchKey,
		HomeForm:       data.HomeForm,
		AwayForm:       data.AwayForm,
		HeadToHead:     data.HeadToHead,
		Injuries:       data.Injuries,
		LeagueStanding: data.LeagueStanding,
		Confidence:     data.Confidence,
		Sources:        pq.StringArray(data.Sources),
		Provider:       string(data.Provider),
		FetchedAt:      data.FetchedAt,
	}

	query, args, err := querybuilder.InsertModel("enrichment_records", row,
		`ON CONFLICT (match_key) DO UPDATE SET
		        home_form = EXCLUDED.home_form,
		        away_form = EXCLUDED.away_form,
		        head_to_head = EXCLUDED.head_to_head,
		        injuries = EXCLUDED.injuries,
		        league_standing = EXCLUDED.league_standing,
		        confidence = EXCLUDED.confidence,
		        sources = EXCLUDED.sources,
		        provider = EXCLUDED.provider,
		        fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build enrichment upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store enrichment record: %w", err)
	}
	return nil
}
