package pool

import "errors"

var (
	// ErrPoolExhausted is returned by TryAcquire (and by AcquireWithRetry
	// once its attempts are spent) when every slot is in use and no new
	// resource may be created. Callers should treat it as backpressure and
	// retry after backing off.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrPoolClosed is returned by acquire calls made after Close. Releases
	// of resources acquired before closing still succeed; the pool discards
	// them instead of pooling them.
	ErrPoolClosed = errors.New("pool closed")

	// ErrUnknownResource is returned by Release for a resource the pool does
	// not currently track as in-use: a double release, or a resource from a
	// different pool. It indicates a caller bug and is never swallowed.
	ErrUnknownResource = errors.New("resource not acquired from this pool")

	// ErrAcquireTimeout is returned by AcquireTimeout when the deadline
	// elapses before a resource becomes available.
	ErrAcquireTimeout = errors.New("timed out waiting for a resource")

	// ErrInvalidConfig is returned by New for an unusable configuration,
	// wrapped with the specific reason.
	ErrInvalidConfig = errors.New("invalid pool configuration")
)
