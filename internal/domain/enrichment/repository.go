package enrichment

import "context"

// Repository is the cache of enrichment records keyed by match key.
// Writers for different keys never contend; Put overwrites unconditionally
// (a write always carries strictly newer data, so last-writer-wins is safe).
type Repository interface {
	Get(ctx context.Context, matchKey string) (Data, bool, error)
	Put(ctx context.Context, data Data) error
}
