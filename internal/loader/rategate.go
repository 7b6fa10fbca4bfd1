package loader

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateGate throttles outbound data-source calls. Loaders that reach a
// remote API call Acquire before each request and report the outcome
// so the gate can back off on repeated failures.
type RateGate interface {
	Acquire(ctx context.Context) error
	RecordSuccess()
	RecordFailure() time.Duration
}

// TokenBucketGate is a RateGate backed by a token bucket plus
// exponential backoff on consecutive failures.
type TokenBucketGate struct {
	limiter *rate.Limiter
	log     zerolog.Logger

	mu           sync.Mutex
	failures     int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxRetries   int
}

// NewTokenBucketGate allows rps sustained calls per second with the
// given burst. Backoff starts at one second, doubles per consecutive
// failure and caps at five minutes.
func NewTokenBucketGate(rps float64, burst int, log zerolog.Logger) *TokenBucketGate {
	return &TokenBucketGate{
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		log:          log.With().Str("component", "rategate").Logger(),
		initialDelay: time.Second,
		maxDelay:     5 * time.Minute,
		multiplier:   2,
		maxRetries:   5,
	}
}

// Acquire blocks until a token is available, first sitting out any
// active backoff delay. Returns the context error on cancellation.
func (g *TokenBucketGate) Acquire(ctx context.Context) error {
	if delay := g.currentDelay(); delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return g.limiter.Wait(ctx)
}

// RecordSuccess clears the failure streak.
func (g *TokenBucketGate) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
}

// RecordFailure bumps the failure streak and returns the backoff delay
// the next Acquire will honor. Zero means the retry budget is spent.
func (g *TokenBucketGate) RecordFailure() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures++
	if g.failures > g.maxRetries {
		g.log.Error().Int("failures", g.failures).Msg("retry budget exhausted")
		return 0
	}
	delay := g.delayLocked()
	g.log.Warn().Int("failures", g.failures).Dur("backoff", delay).Msg("backing off")
	return delay
}

// Exhausted reports whether the failure streak passed the retry budget.
func (g *TokenBucketGate) Exhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failures > g.maxRetries
}

func (g *TokenBucketGate) currentDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failures == 0 {
		return 0
	}
	return g.delayLocked()
}

func (g *TokenBucketGate) delayLocked() time.Duration {
	delay := g.initialDelay
	for i := 1; i < g.failures; i++ {
		delay = time.Duration(float64(delay) * g.multiplier)
		if delay >= g.maxDelay {
			return g.maxDelay
		}
	}
	if delay > g.maxDelay {
		delay = g.maxDelay
	}
	return delay
}
