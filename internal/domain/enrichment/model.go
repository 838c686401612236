package enrichment

import (
	"strings"
	"time"
)

// Provider identifies which tier of the fetch chain produced a record. The
// cache freshness check keys its TTL off this tag.
type Provider string

const (
	ProviderGrounded Provider = "grounded"
	ProviderLatent   Provider = "latent"
	ProviderDefault  Provider = "default"
)

// Unavailable is the sentinel stored in text fields when no tier could
// produce data.
const Unavailable = "unavailable"

// Data is the statistical picture of one match, produced by the fetch chain
// and consumed by the scorer.
type Data struct {
	MatchKey       string    `json:"match_key"`
	HomeForm       string    `json:"home_form"`
	AwayForm       string    `json:"away_form"`
	HeadToHead     string    `json:"head_to_head"`
	Injuries       string    `json:"injuries"`
	LeagueStanding string    `json:"league_standing"`
	Confidence     int       `json:"confidence"`
	Sources        []string  `json:"sources,omitempty"`
	Provider       Provider  `json:"provider"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Normalize clamps confidence into [0,100] and enforces the invariant that
// a record without sources carries zero confidence.
func (d Data) Normalize() Data {
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 100 {
		d.Confidence = 100
	}

	kept := d.Sources[:0]
	for _, s := range d.Sources {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	d.Sources = kept
	if len(d.Sources) == 0 {
		// A record that cannot say where its data came from carries no
		// confidence. Latent-tier fetches list the model itself as source.
		d.Confidence = 0
	}
	if d.Provider == "" {
		d.Provider = ProviderDefault
	}
	return d
}

// DefaultRecord is the zero-confidence terminal tier of the fetch chain.
func DefaultRecord(matchKey string, now time.Time) Data {
	return Data{
		MatchKey:       matchKey,
		HomeForm:       Unavailable,
		AwayForm:       Unavailable,
		HeadToHead:     Unavailable,
		Injuries:       Unavailable,
		LeagueStanding: Unavailable,
		Confidence:     0,
		Provider:       ProviderDefault,
		FetchedAt:      now,
	}
}

// TTLs hold the per-provider freshness windows. The two legacy providers
// used 6h and 24h; both stay configurable.
type TTLs struct {
	Grounded time.Duration
	Latent   time.Duration
	Default  time.Duration
}

func (t TTLs) For(p Provider) time.Duration {
	switch p {
	case ProviderGrounded:
		return t.Grounded
	case ProviderLatent:
		return t.Latent
	default:
		if t.Default > 0 {
			return t.Default
		}
		return t.Latent
	}
}

// Fresh reports whether the record may be served without a refresh. Pure
// function of FetchedAt and the configured TTL.
func (d Data) Fresh(now time.Time, ttls TTLs) bool {
	ttl := ttls.For(d.Provider)
	if ttl <= 0 {
		return false
	}
	return now.Sub(d.FetchedAt) < ttl
}
