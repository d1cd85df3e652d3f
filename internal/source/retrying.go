package source

import (
	"context"
	"time"

	"promofeed/internal/config"
	"promofeed/internal/logger"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
	"promofeed/pkg/retry"
)

// RetryingFetcher retries transient failures of the wrapped fetcher with
// exponential backoff. Client errors and undecodable bodies fail at once.
type RetryingFetcher struct {
	next   Fetcher
	policy retry.Policy
	logger logger.Logger
}

func NewRetryingFetcher(next Fetcher, cfg config.RetryConfig, log logger.Logger) *RetryingFetcher {
	policy := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		policy.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		policy.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier >= 1 {
		policy.Multiplier = cfg.Multiplier
	}
	policy.MaxElapsedTime = cfg.MaxElapsedTime

	return &RetryingFetcher{next: next, policy: policy, logger: log}
}

func (f *RetryingFetcher) Fetch(ctx context.Context, endpoint Endpoint) (models.RawEnvelope, error) {
	var env models.RawEnvelope

	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		var err error
		env, err = f.next.Fetch(ctx, endpoint)
		if err == nil {
			return nil
		}
		if retryable, _ := IsRetryableError(err); !retryable {
			return retry.NewFatalError(err)
		}
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		_, reason := IsRetryableError(err)
		metrics.IncRetryAttempt("upstream_fetch", reason)
		f.logger.WarnwCtx(ctx, "Upstream fetch failed, retrying",
			"endpoint", string(endpoint),
			"attempt", attempt,
			"max_attempts", f.policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
		)
	})
	if err != nil {
		return models.RawEnvelope{}, err
	}
	return env, nil
}
