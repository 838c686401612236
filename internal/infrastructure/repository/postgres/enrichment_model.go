package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
)

type enrichmentTableModel struct {
	MatchKey       string         `db:"match_key"`
	HomeForm       string         `db:"home_form"`
	AwayForm       string         `db:"away_form"`
	HeadToHead     string         `db:"head_to_head"`
	Injuries       string         `db:"injuries"`
	LeagueStanding string         `db:"league_standing"`
	Confidence     int            `db:"confidence"`
	Sources        pq.StringArray `db:"sources"`
	Provider       string         `db:"provider"`
	FetchedAt      time.Time      `db:"fetched_at"`
}

func (m enrichmentTableModel) toDomain() enrichment.Data {
	return enrichment.Data{
		MatchKey:       m.MatchKey,
		HomeForm:       m.HomeForm,
		AwayForm:       m.AwayForm,
		HeadToHead:     m.HeadToHead,
		Injuries:       m.Injuries,
		LeagueStanding: m.LeagueStanding,
		Confidence:     m.Confidence,
		Sources:        []string(m.Sources),
		Provider:       enrichment.Provider(m.Provider),
		FetchedAt:      m.FetchedAt,
	}
}
