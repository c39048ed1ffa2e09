// Package pool provides a small, well-documented, generic resource pool
// for sharing expensive-to-create objects across concurrent callers.
//
// The primary type is Pool[T], a bounded pool which creates resources
// lazily through a caller-supplied factory, hands them out on Acquire, and
// reclaims them on Release. Idle resources are reused most-recently-released
// first, so warm resources stay warm; callers blocked on an exhausted pool
// are served first-come first-served.
//
// # Basic Usage
//
//	p, err := pool.New(10, func(ctx context.Context) (*sql.Conn, error) {
//	    return db.Conn(ctx)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	r, err := p.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer p.Release(r)
//	use(r.Value())
//
// # Acquire Variants
//
// The pool supports three ways to check a resource out:
//
//   - Acquire: blocks on an exhausted pool until a resource is released or
//     the context is done
//   - TryAcquire: never waits; fails with ErrPoolExhausted immediately
//   - AcquireTimeout: blocks at most a fixed duration, then fails with
//     ErrAcquireTimeout
//
// AcquireWithRetry layers bounded retries with backoff on top of
// TryAcquire for callers that prefer polling to parking.
//
// # Scoped Use
//
// With brackets acquire and release around a function call, guaranteeing
// the resource is returned exactly once even when the function panics:
//
//	err := p.With(ctx, func(conn *sql.Conn) error {
//	    return conn.PingContext(ctx)
//	})
//
// # Resource Lifecycle
//
// A reset hook runs on every release and can reject a resource that is no
// longer fit for reuse; rejected resources are torn down and their capacity
// is recovered by later factory calls:
//
//	p, _ := pool.New(10, dial,
//	    pool.WithReset(func(c *Conn) error { return c.Ping() }),
//	    pool.WithTeardown(func(c *Conn) { c.Close() }),
//	)
//
// Close drains and tears down the idle set, wakes blocked acquirers with
// ErrPoolClosed, and rejects later acquires. Resources still checked out
// can be released normally; the pool discards them on return.
//
// # Configuration Options
//
//   - WithReset(fn): Validate/restore resources between uses
//   - WithTeardown(fn): Destructor for discarded resources
//   - WithInitialSize(n): Pre-fill the pool eagerly at construction
//   - WithFactoryRateLimit(perSecond, burst): Throttle resource construction
//   - WithOnAcquire/WithOnRelease/WithOnDiscard(fn): Observability hooks
//
// # Error Handling
//
// All failures surface to the immediate caller as wrapped sentinel errors
// (ErrPoolExhausted, ErrPoolClosed, ErrUnknownResource, ErrAcquireTimeout)
// compatible with errors.Is. Factory and reset errors propagate unchanged;
// a failed factory call never consumes pool capacity.
//
// The package is designed to be small and idiomatic for Go 1.18+ (generics).
package pool
