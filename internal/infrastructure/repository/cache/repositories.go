// Package cache decorates repositories with a short-lived in-process
// read-through layer. The durable enrichment cache lives in postgres; this
// layer only absorbs the repeated reads a multi-match slip produces within
// one analysis window.
package cache

import (
	"context"

	"github.com/riskibarqy/betslip-analyzer/internal/domain/enrichment"
	basecache "github.com/riskibarqy/betslip-analyzer/internal/platform/cache"
)

type cachedEnrichmentEntry struct {
	data  enrichment.Data
	found bool
}

type EnrichmentRepository struct {
	next  enrichment.Repository
	cache *basecache.Store
}

func NewEnrichmentRepository(next enrichment.Repository, cache *basecache.Store) *EnrichmentRepository {
	return &EnrichmentRepository{next: next, cache: cache}
}

func (r *EnrichmentRepository) Get(ctx context.Context, matchKey string) (enrichment.Data, bool, error) {
	if matchKey == "" {
		return r.next.Get(ctx, matchKey)
	}

	v, err := r.cache.GetOrLoad(ctx, enrichmentCacheKey(matchKey), func(ctx context.Context) (any, error) {
		data, found, err := r.next.Get(ctx, matchKey)
		if err != nil {
			return nil, err
		}
		return cachedEnrichmentEntry{data: data, found: found}, nil
	})
	if err != nil {
		return enrichment.Data{}, false, err
	}

	entry := v.(cachedEnrichmentEntry)
	return entry.data, entry.found, nil
}

func (r *EnrichmentRepository) Put(ctx context.Context, data enrichment.Data) error {
	if err := r.next.Put(ctx, data); err != nil {
		return err
	}

	// The write-back carries strictly newer data than whatever is cached.
	r.cache.Set(ctx, enrichmentCacheKey(data.MatchKey), cachedEnrichmentEntry{data: data, found: true})
	return nil
}

func enrichmentCacheKey(matchKey string) string {
	return "enrichment:" + matchKey
}
