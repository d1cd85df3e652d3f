package source

import (
	"context"
	"fmt"

	"promofeed/internal/config"
	"promofeed/internal/logger"
	"promofeed/pkg/circuitbreaker"
	"promofeed/pkg/models"
)

type CircuitBreakerFetcher struct {
	next Fetcher
	cb   *circuitbreaker.Wrapper
	name string
}

func NewCircuitBreakerFetcher(next Fetcher, cfg circuitbreaker.Config) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		next: next,
		cb:   circuitbreaker.NewWrapper(cfg),
		name: cfg.Name,
	}
}

func (f *CircuitBreakerFetcher) Fetch(ctx context.Context, endpoint Endpoint) (models.RawEnvelope, error) {
	result, err := f.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return f.next.Fetch(ctx, endpoint)
	})
	if err != nil {
		if circuitbreaker.IsOpenError(err) {
			return models.RawEnvelope{}, fmt.Errorf("circuit breaker is open for %s: %w", f.name, err)
		}
		return models.RawEnvelope{}, err
	}

	env, ok := result.(models.RawEnvelope)
	if !ok {
		return models.RawEnvelope{}, fmt.Errorf("fetcher returned invalid result type %T", result)
	}
	return env, nil
}

func (f *CircuitBreakerFetcher) State() string {
	return f.cb.State().String()
}

// NewFetcher assembles the upstream fetch chain: HTTP, then retries, then
// the circuit breaker when enabled. Client errors do not count as breaker
// failures.
func NewFetcher(upstream config.UpstreamConfig, breaker config.CircuitBreakerConfig, base Fetcher, log logger.Logger) Fetcher {
	var f Fetcher = NewRetryingFetcher(base, upstream.Retry, log)
	if !breaker.Enabled {
		return f
	}

	cbConfig := circuitbreaker.DefaultConfig("upstream")
	if breaker.MaxRequests > 0 {
		cbConfig.MaxRequests = breaker.MaxRequests
	}
	if breaker.Interval > 0 {
		cbConfig.Interval = breaker.Interval
	}
	if breaker.Timeout > 0 {
		cbConfig.Timeout = breaker.Timeout
	}
	if breaker.FailureRatio > 0 {
		cbConfig.FailureRatio = breaker.FailureRatio
	}
	if breaker.MinRequests > 0 {
		cbConfig.MinRequests = breaker.MinRequests
	}
	cbConfig.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		retryable, reason := IsRetryableError(err)
		return !retryable && reason != "unknown_error"
	}

	return NewCircuitBreakerFetcher(f, cbConfig)
}
