package translation

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/polyglot/internal/apperrors"
)

// guard runs calls through an optional circuit breaker
type guard struct {
	cb *gobreaker.CircuitBreaker
}

func newGuard(name string, cfg Config) *guard {
	if cfg.BreakerThreshold == 0 {
		return &guard{}
	}

	threshold := cfg.BreakerThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// rejected prompts say nothing about the health of the endpoint
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			kind, _ := apperrors.KindOf(err)
			return kind == apperrors.KindBadRequest || kind == apperrors.KindValidation
		},
	}

	return &guard{cb: gobreaker.NewCircuitBreaker(settings)}
}

func (g *guard) run(call func() (string, error)) (string, error) {
	if g == nil || g.cb == nil {
		return call()
	}

	out, err := g.cb.Execute(func() (interface{}, error) {
		return call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", apperrors.Transient(fmt.Errorf("circuit breaker %q is open: %w", g.cb.Name(), err))
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
