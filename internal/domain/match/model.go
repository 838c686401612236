package match

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/textnorm"
)

// Detected is one fixture read off a betting slip. Immutable once built.
type Detected struct {
	Key         string
	HomeTeamRaw string
	AwayTeamRaw string
	League      string
	Date        *time.Time
	Odds        float64

	// Canonical forms, derived once at construction.
	HomeTeam string
	AwayTeam string
}

// NewDetected canonicalizes the raw names and derives the deterministic key.
func NewDetected(league, home, away string, date *time.Time, odds float64) Detected {
	homeCanon := textnorm.Canonical(home)
	awayCanon := textnorm.Canonical(away)
	leagueCanon := textnorm.Canonical(league)

	return Detected{
		Key:         Key(leagueCanon, homeCanon, awayCanon),
		HomeTeamRaw: home,
		AwayTeamRaw: away,
		League:      league,
		Date:        date,
		Odds:        odds,
		HomeTeam:    homeCanon,
		AwayTeam:    awayCanon,
	}
}

// Key hashes the canonical (league, home, away) triple. Identical inputs
// always produce the same key, which keeps cache lookups idempotent.
func Key(leagueCanon, homeCanon, awayCanon string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(leagueCanon))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(homeCanon))
	_, _ = h.Write([]byte{'|'})
	_, _ = h.Write([]byte(awayCanon))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Path is the readable fallback identifier used where a hash key cannot be
// stored, built from the same canonical triple.
func (d Detected) Path() string {
	return textnorm.Canonical(d.League) + "/" + d.HomeTeam + "/" + d.AwayTeam
}
