package resilience

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// errRetryable marks failures worth another attempt (rate limits, transient
// transport errors). Providers wrap their errors with MarkRetryable so call
// sites never inspect status codes themselves.
var errRetryable = crerr.New("retryable failure")

// MarkRetryable tags err so RetryWithBackoff will re-attempt it.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, errRetryable)
}

// IsRetryable reports whether err was tagged by MarkRetryable.
func IsRetryable(err error) bool {
	return err != nil && crerr.Is(err, errRetryable)
}

type RetryConfig struct {
	MaxAttempts int
	// Backoff holds the sleep before each re-attempt. Attempts beyond its
	// length reuse the last entry.
	Backoff []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff:     []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second},
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if len(cfg.Backoff) == 0 {
		cfg.Backoff = defaults.Backoff
	}
	return cfg
}

// RetryWithBackoff runs fn up to cfg.MaxAttempts times, sleeping the
// configured backoff between attempts. Only errors tagged retryable are
// re-attempted; anything else, and context cancellation, returns
// immediately.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = NormalizeRetryConfig(cfg)

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			idx := attempt - 1
			if idx >= len(cfg.Backoff) {
				idx = len(cfg.Backoff) - 1
			}
			timer := time.NewTimer(cfg.Backoff[idx])
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !IsRetryable(err) {
			return zero, err
		}
	}

	return zero, lastErr
}
