package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// CircuitBreaker protects a provider from being hammered while it is down.
// Closed counts consecutive failures; open rejects until the timeout lapses;
// half-open admits a bounded probe set before closing again.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg CircuitBreakerConfig
	now func() time.Time

	state             CircuitState
	failureStreak     int
	openedAt          time.Time
	halfOpenInFlight  int
	halfOpenSuccesses int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}

	return &CircuitBreaker{
		cfg:   cfg,
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// Allow reports whether a request may proceed, reserving a half-open slot
// when probing.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.halfOpenInFlight = 0
		b.halfOpenSuccesses = 0
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failureStreak = 0
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.cfg.HalfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.state = CircuitStateClosed
			b.failureStreak = 0
			b.openedAt = time.Time{}
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failureStreak++
		if b.failureStreak >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.trip()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}
