package pool

import (
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pool.
type Option[T any] func(*config[T])

type config[T any] struct {
	reset       ResetFunc[T]
	teardown    TeardownFunc[T]
	initialSize int
	limiter     *rate.Limiter

	onAcquire func(id uint64)
	onRelease func(id uint64)
	onDiscard func(id uint64)
}

// WithReset installs a reset hook that runs on every Release before the
// resource rejoins the idle set. If the hook returns an error, the resource
// is discarded rather than pooled and the error is returned to the caller of
// Release. The hook runs outside the pool's lock, so a slow reset does not
// block unrelated acquires and releases.
func WithReset[T any](fn ResetFunc[T]) Option[T] {
	return func(cfg *config[T]) {
		cfg.reset = fn
	}
}

// WithTeardown installs a destructor hook invoked once for every resource the
// pool discards: failed resets, releases after Close, and the idle resources
// drained by Close itself. It runs outside the pool's lock.
func WithTeardown[T any](fn TeardownFunc[T]) Option[T] {
	return func(cfg *config[T]) {
		cfg.teardown = fn
	}
}

// WithInitialSize pre-fills the pool with n resources at construction time
// instead of creating them lazily on first acquire. Values above the pool's
// maximum size are clamped to it. If the factory fails during pre-fill, New
// tears down the resources built so far and returns the factory error.
func WithInitialSize[T any](n int) Option[T] {
	return func(cfg *config[T]) {
		if n > 0 {
			cfg.initialSize = n
		}
	}
}

// WithFactoryRateLimit throttles resource construction to perSecond new
// resources per second with the given burst. This protects slow backends
// from connection storms when many callers miss the idle set at once.
// Blocking acquires wait for a token (honoring their context); TryAcquire
// reports ErrPoolExhausted when no token is immediately available.
// If not specified, construction is not throttled.
func WithFactoryRateLimit[T any](perSecond float64, burst int) Option[T] {
	return func(cfg *config[T]) {
		if perSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithOnAcquire installs an observability hook called with the resource id
// each time a resource is handed to a caller. The hook runs outside the
// pool's lock and must not call back into the pool.
func WithOnAcquire[T any](fn func(id uint64)) Option[T] {
	return func(cfg *config[T]) {
		cfg.onAcquire = fn
	}
}

// WithOnRelease installs an observability hook called with the resource id
// each time a resource is successfully returned to the pool.
func WithOnRelease[T any](fn func(id uint64)) Option[T] {
	return func(cfg *config[T]) {
		cfg.onRelease = fn
	}
}

// WithOnDiscard installs an observability hook called with the resource id
// each time the pool permanently discards a resource.
func WithOnDiscard[T any](fn func(id uint64)) Option[T] {
	return func(cfg *config[T]) {
		cfg.onDiscard = fn
	}
}
