package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// FailureClassifier reports whether err should count against the breaker.
type FailureClassifier func(err error) bool

// Guard runs each call once through a per-operation circuit breaker.
type Guard struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewGuard(cfg Config) *Guard {
	return &Guard{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (g *Guard) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	countsAsFailure FailureClassifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if countsAsFailure == nil {
		countsAsFailure = defaultClassifier
	}

	if !g.cfg.BreakerEnabled {
		return fn(ctx)
	}

	breaker := g.circuitBreaker(op, countsAsFailure)
	_, err := breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (g *Guard) circuitBreaker(operation string, countsAsFailure FailureClassifier) *gobreaker.CircuitBreaker[any] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if breaker, ok := g.breakers[operation]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: g.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     g.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= g.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAsFailure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	breaker := gobreaker.NewCircuitBreaker[any](settings)
	g.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func defaultClassifier(error) bool {
	return true
}
