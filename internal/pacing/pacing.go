// Package pacing spaces out calls to the completion API so a batch stays
// under the provider's rate limits. A Policy is consulted before every call
// (Throttle) and told about every outcome (Observe).
package pacing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

// DefaultDelay is the pause kept between consecutive calls
const DefaultDelay = 1500 * time.Millisecond

// Policy names
const (
	PolicyFixed       = "fixed"
	PolicyTokenBucket = "token-bucket"
	PolicyAdaptive    = "adaptive"
	PolicyNone        = "none"
)

// Policy decides how long to wait before the next call
type Policy interface {
	// Throttle blocks until the next call may start or ctx is done
	Throttle(ctx context.Context) error
	// Observe records that a call finished with err (nil on success)
	Observe(err error)
}

// Config selects and tunes a policy
type Config struct {
	Policy   string
	Delay    time.Duration
	Burst    int           // token-bucket only
	MaxDelay time.Duration // adaptive only
}

// New builds the configured policy
func New(cfg Config) (Policy, error) {
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("pacing delay must not be negative, got %s", cfg.Delay)
	}

	switch cfg.Policy {
	case PolicyFixed, "":
		return NewFixedDelay(cfg.Delay), nil
	case PolicyTokenBucket:
		return NewTokenBucket(cfg.Delay, cfg.Burst), nil
	case PolicyAdaptive:
		return NewAdaptive(cfg.Delay, cfg.MaxDelay), nil
	case PolicyNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown pacing policy: %s", cfg.Policy)
	}
}

// None never waits
type None struct{}

func (None) Throttle(ctx context.Context) error { return ctx.Err() }
func (None) Observe(error)                      {}

// FixedDelay keeps at least Delay between the end of one call and the start
// of the next, whatever the outcome of the previous call was
type FixedDelay struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFixedDelay creates a fixed spacing policy
func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{
		delay: delay,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Delay returns the configured spacing
func (f *FixedDelay) Delay() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delay
}

func (f *FixedDelay) Throttle(ctx context.Context) error {
	f.mu.Lock()
	wait := time.Duration(0)
	if !f.last.IsZero() {
		wait = f.delay - f.now().Sub(f.last)
	}
	f.mu.Unlock()

	if wait <= 0 {
		return ctx.Err()
	}
	return f.sleep(ctx, wait)
}

func (f *FixedDelay) Observe(error) {
	f.mu.Lock()
	f.last = f.now()
	f.mu.Unlock()
}

// TokenBucket allows bursts of Burst calls and refills one token per interval
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token-bucket policy. A zero interval means no limit.
func NewTokenBucket(interval time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

func (t *TokenBucket) Throttle(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

func (t *TokenBucket) Observe(error) {}

// Adaptive behaves like FixedDelay but doubles the spacing after a
// rate-limit failure (up to max) and halves it back toward the base after
// each success
type Adaptive struct {
	*FixedDelay
	base time.Duration
	max  time.Duration
}

// NewAdaptive creates an adaptive policy. A zero max defaults to 32x base.
func NewAdaptive(base, max time.Duration) *Adaptive {
	if max <= 0 {
		max = 32 * base
	}
	if max < base {
		max = base
	}
	return &Adaptive{
		FixedDelay: NewFixedDelay(base),
		base:       base,
		max:        max,
	}
}

func (a *Adaptive) Observe(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last = a.now()

	if apperrors.IsRateLimit(err) {
		next := a.delay * 2
		if next == 0 {
			next = time.Second
		}
		if next > a.max {
			next = a.max
		}
		a.delay = next
		return
	}

	if err == nil && a.delay > a.base {
		a.delay /= 2
		if a.delay < a.base {
			a.delay = a.base
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
