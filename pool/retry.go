package pool

import (
	"context"
	"errors"
	"time"

	"github.com/utkarsh5026/respool/internal/algorithms"
)

// RetryOption is a functional option for configuring AcquireWithRetry.
type RetryOption func(*retryConfig)

type retryConfig struct {
	maxAttempts  int
	backoffType  algorithms.BackoffType
	initialDelay time.Duration
	maxDelay     time.Duration
	jitterFactor float64
}

// WithMaxAttempts sets how many TryAcquire attempts are made before giving
// up with ErrPoolExhausted. Defaults to 5.
func WithMaxAttempts(n int) RetryOption {
	return func(cfg *retryConfig) {
		if n > 0 {
			cfg.maxAttempts = n
		}
	}
}

// WithExponentialBackoff uses plain exponential delays between attempts:
// initialDelay, 2x, 4x, ... capped at maxDelay. This is the default with
// initialDelay=100ms and maxDelay=5s.
func WithExponentialBackoff(initialDelay, maxDelay time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		cfg.backoffType = algorithms.BackoffExponential
		setDelays(cfg, initialDelay, maxDelay)
	}
}

// WithJitteredBackoff uses exponential delays randomized by ±jitterFactor
// (0.0 to 1.0) to spread out retries from callers that hit exhaustion at
// the same moment.
func WithJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) RetryOption {
	return func(cfg *retryConfig) {
		cfg.backoffType = algorithms.BackoffJittered
		setDelays(cfg, initialDelay, maxDelay)
		if jitterFactor > 0 {
			cfg.jitterFactor = jitterFactor
		}
	}
}

// WithDecorrelatedBackoff uses AWS-style decorrelated jitter, where each
// delay is drawn from [initialDelay, 3*previousDelay] capped at maxDelay.
func WithDecorrelatedBackoff(initialDelay, maxDelay time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		cfg.backoffType = algorithms.BackoffDecorrelated
		setDelays(cfg, initialDelay, maxDelay)
	}
}

func setDelays(cfg *retryConfig, initialDelay, maxDelay time.Duration) {
	if initialDelay > 0 {
		cfg.initialDelay = initialDelay
	}
	if maxDelay > 0 {
		cfg.maxDelay = maxDelay
	}
}

// AcquireWithRetry repeatedly calls TryAcquire with backoff between
// attempts, turning the pool's ErrPoolExhausted backpressure signal into a
// bounded retry loop. Errors other than exhaustion (a closed pool, a factory
// failure) abort immediately. When every attempt finds the pool exhausted,
// the last ErrPoolExhausted is returned.
//
// Example:
//
//	r, err := pool.AcquireWithRetry(ctx, p,
//	    pool.WithMaxAttempts(8),
//	    pool.WithJitteredBackoff(50*time.Millisecond, 2*time.Second, 0.2),
//	)
func AcquireWithRetry[T any](ctx context.Context, p *Pool[T], opts ...RetryOption) (*Resource[T], error) {
	cfg := &retryConfig{
		maxAttempts:  5,
		backoffType:  algorithms.BackoffExponential,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     5 * time.Second,
		jitterFactor: 0.1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	strategy := algorithms.NewBackoffStrategy(
		cfg.backoffType,
		cfg.initialDelay,
		cfg.maxDelay,
		cfg.jitterFactor,
	)
	strategy.Reset()

	var lastErr error
	for attempt := range cfg.maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if attempt > 0 {
			select {
			case <-time.After(strategy.NextDelay(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		r, err := p.TryAcquire()
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrPoolExhausted) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
