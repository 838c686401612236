package resilience

import (
	"context"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var ErrQuotaExhausted = crerr.New("rate limit quota exhausted")

type RateLimiterConfig struct {
	// Quota caps the number of calls inside a window; zero means unlimited.
	Quota int
	// Window is the quota reset period.
	Window time.Duration
	// MinInterval enforces a pause between consecutive calls. Providers
	// with daily quotas use this to serialize traffic.
	MinInterval time.Duration
}

// RateLimiter owns its counter and reset time instead of leaning on shared
// package state, so each provider client gets its own injected instance.
type RateLimiter struct {
	mu sync.Mutex

	cfg         RateLimiterConfig
	used        int
	windowStart time.Time
	lastCall    time.Time
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &RateLimiter{
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Acquire blocks until the inter-call delay has passed and a quota slot is
// available, or fails with ErrQuotaExhausted when the window is spent.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.cfg.Window {
		l.windowStart = now
		l.used = 0
	}

	if l.cfg.Quota > 0 && l.used >= l.cfg.Quota {
		l.mu.Unlock()
		return crerr.WithDetailf(ErrQuotaExhausted, "window resets at %s", l.windowStart.Add(l.cfg.Window).Format(time.RFC3339))
	}

	var wait time.Duration
	if l.cfg.MinInterval > 0 && !l.lastCall.IsZero() {
		if elapsed := now.Sub(l.lastCall); elapsed < l.cfg.MinInterval {
			wait = l.cfg.MinInterval - elapsed
		}
	}

	// Reserve the slot before sleeping so concurrent callers queue behind
	// this one instead of racing for the same interval.
	l.used++
	l.lastCall = now.Add(wait)
	l.mu.Unlock()

	if wait > 0 {
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return nil
}

// Remaining reports quota left in the current window; -1 means unlimited.
func (l *RateLimiter) Remaining() int {
	if l == nil || l.cfg.Quota <= 0 {
		return -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || l.now().Sub(l.windowStart) >= l.cfg.Window {
		return l.cfg.Quota
	}
	left := l.cfg.Quota - l.used
	if left < 0 {
		left = 0
	}
	return left
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
