package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
)

// EnrichmentRepository is the in-process enrichment cache. Entries are
// stored until overwritten; staleness is judged by the caller against the
// record's FetchedAt, so a stale entry stays visible as a refresh candidate.
type EnrichmentRepository struct {
	mu      sync.RWMutex
	entries map[string]enrichment.Data
}

func NewEnrichmentRepository() *EnrichmentRepository {
	return &EnrichmentRepository{entries: make(map[string]enrichment.Data)}
}

func (r *EnrichmentRepository) Get(_ context.Context, matchKey string) (enrichment.Data, bool, error) {
	if matchKey == "" {
		return enrichment.Data{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.entries[matchKey]
	return data, ok, nil
}

func (r *EnrichmentRepository) Put(_ context.Context, data enrichment.Data) error {
	if data.MatchKey == "" {
		return nil
	}

	r.mu.Lock()
	r.entries[data.MatchKey] = data
	r.mu.Unlock()
	return nil
}

// Len reports the number of cached records.
func (r *EnrichmentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
