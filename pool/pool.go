package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a bounded, generic resource pool. It hands out reusable resources
// on request and reclaims them on return, creating new ones lazily through a
// caller-supplied factory up to a fixed capacity ceiling.
//
// Idle resources are reused in LIFO order (the most recently released
// resource is handed out first) to favor cache-warm resources. When the pool
// is exhausted, blocking acquires queue up and are woken in FIFO order as
// resources come back.
//
// A Pool is safe for concurrent use by multiple goroutines. The zero value
// is not usable; construct pools with New.
//
// Type parameters:
//   - T: The resource value type produced by the factory
type Pool[T any] struct {
	factory FactoryFunc[T]
	conf    *config[T]
	maxSize int

	idSeq atomic.Uint64

	mu       sync.Mutex
	idle     []*Resource[T] // LIFO stack, top at the end
	inUse    map[*Resource[T]]struct{}
	waiters  []*waiter[T] // FIFO, eldest first
	creating int          // slots reserved for in-flight factory calls
	closed   bool
	stats    counters
}

// waiter represents one caller blocked in Acquire. Its channel is buffered
// so a releaser can hand off without blocking while holding the pool lock.
type waiter[T any] struct {
	ready chan handoff[T]
}

// handoff is what a blocked acquirer receives when it is woken.
// Exactly one of the three cases applies:
//   - res non-nil: a released resource transferred directly, already in-use
//   - grant: a capacity slot reserved for the waiter's own factory call
//   - neither: the pool closed while the caller was waiting
type handoff[T any] struct {
	res   *Resource[T]
	grant bool
}

// New creates a pool with the given capacity ceiling and resource factory.
// maxSize must be positive and factory must be non-nil; otherwise New
// returns an error wrapping ErrInvalidConfig.
//
// Example:
//
//	p, err := pool.New(10, func(ctx context.Context) (*Conn, error) {
//	    return dial(ctx, addr)
//	}, pool.WithReset(resetConn), pool.WithTeardown(closeConn))
func New[T any](maxSize int, factory FactoryFunc[T], opts ...Option[T]) (*Pool[T], error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfig, maxSize)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: factory must be provided", ErrInvalidConfig)
	}

	cfg := &config[T]{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.initialSize > maxSize {
		cfg.initialSize = maxSize
	}

	p := &Pool[T]{
		factory: factory,
		conf:    cfg,
		maxSize: maxSize,
		idle:    make([]*Resource[T], 0, maxSize),
		inUse:   make(map[*Resource[T]]struct{}, maxSize),
	}

	for range cfg.initialSize {
		val, err := factory(context.Background())
		if err != nil {
			for _, r := range p.idle {
				p.destroy(r)
			}
			return nil, fmt.Errorf("pre-fill factory call failed: %w", err)
		}
		r := p.wrap(val)
		r.state = stateIdle
		p.idle = append(p.idle, r)
		p.stats.created++
	}

	return p, nil
}

// Acquire returns a resource from the pool, reusing the most recently
// released idle resource when one exists and invoking the factory when the
// pool still has spare capacity. When the pool is exhausted, Acquire blocks
// until a resource is released or ctx is done; blocked callers are served in
// FIFO order. Use context.WithTimeout (or AcquireTimeout) to bound the wait.
//
// Acquire fails with ErrPoolClosed once Close has been called, and with the
// factory's error if construction fails (a failed construction does not
// consume capacity).
func (p *Pool[T]) Acquire(ctx context.Context) (*Resource[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	if r := p.popIdleLocked(); r != nil {
		p.mu.Unlock()
		p.checkedOut(r)
		return r, nil
	}

	if p.totalLocked() < p.maxSize {
		p.creating++
		p.mu.Unlock()
		return p.construct(ctx, false)
	}

	w := &waiter[T]{ready: make(chan handoff[T], 1)}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	select {
	case h := <-w.ready:
		return p.redeem(ctx, h)
	case <-ctx.Done():
		return nil, p.cancelWait(w, ctx.Err())
	}
}

// AcquireTimeout is a convenience wrapper around Acquire that waits at most
// d for a resource. It returns ErrAcquireTimeout when the deadline elapses.
func (p *Pool[T]) AcquireTimeout(d time.Duration) (*Resource[T], error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	r, err := p.Acquire(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrAcquireTimeout
	}
	return r, err
}

// TryAcquire is the non-blocking variant of Acquire. When the pool is
// exhausted it fails immediately with ErrPoolExhausted instead of waiting.
// Note that TryAcquire still invokes the factory synchronously when capacity
// allows; only waiting for another caller's release is skipped.
func (p *Pool[T]) TryAcquire() (*Resource[T], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	if r := p.popIdleLocked(); r != nil {
		p.mu.Unlock()
		p.checkedOut(r)
		return r, nil
	}

	if p.totalLocked() < p.maxSize {
		if p.conf.limiter != nil && !p.conf.limiter.Allow() {
			p.mu.Unlock()
			return nil, ErrPoolExhausted
		}
		p.creating++
		p.mu.Unlock()
		return p.construct(context.Background(), true)
	}

	p.mu.Unlock()
	return nil, ErrPoolExhausted
}

// Release returns a resource previously obtained from Acquire to the pool.
// If a reset hook is configured it runs first, outside the pool's lock; a
// reset failure discards the resource and the error is returned to the
// caller. Otherwise the resource is handed directly to the eldest blocked
// acquirer, or pushed onto the idle stack when nobody is waiting.
//
// Releasing a resource the pool does not track as in-use (a double release
// or a resource from another pool) fails with ErrUnknownResource.
func (p *Pool[T]) Release(r *Resource[T]) error {
	if r == nil {
		return ErrUnknownResource
	}

	p.mu.Lock()
	if _, ok := p.inUse[r]; !ok || r.state != stateInUse {
		p.mu.Unlock()
		return ErrUnknownResource
	}
	r.state = stateReleasing
	closed := p.closed
	p.mu.Unlock()

	if closed {
		p.discard(r, false)
		return nil
	}

	if p.conf.reset != nil {
		if err := p.conf.reset(r.value); err != nil {
			p.discard(r, true)
			return fmt.Errorf("reset failed, resource discarded: %w", err)
		}
	}

	if p.conf.onRelease != nil {
		p.conf.onRelease(r.id)
	}

	p.requeue(r)
	return nil
}

// With acquires a resource, passes its value to fn, and guarantees the
// resource is released exactly once on every exit path, including a panic
// escaping fn. It returns fn's error, or the release error when fn succeeds
// but the configured reset reports the resource unfit.
func (p *Pool[T]) With(ctx context.Context, fn func(value T) error) (err error) {
	r, acqErr := p.Acquire(ctx)
	if acqErr != nil {
		return acqErr
	}

	defer func() {
		relErr := p.Release(r)
		if err == nil {
			err = relErr
		}
	}()

	return fn(r.value)
}

// Close transitions the pool to its terminal closed state. Idle resources
// are drained and torn down, blocked acquires are woken with ErrPoolClosed,
// and any subsequent Acquire fails with ErrPoolClosed. Resources currently
// checked out are not reclaimed: their releases still succeed, and the pool
// discards them on return instead of pooling them.
//
// Closing an already-closed pool returns ErrPoolClosed.
func (p *Pool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true

	drained := p.idle
	p.idle = nil
	for _, w := range p.waiters {
		w.ready <- handoff[T]{}
	}
	p.waiters = nil
	p.stats.discarded += int64(len(drained))
	p.mu.Unlock()

	debugLog("pool closed, draining %d idle resources", len(drained))
	for _, r := range drained {
		p.destroy(r)
	}
	return nil
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Idle:      len(p.idle),
		InUse:     len(p.inUse),
		Waiting:   len(p.waiters),
		Created:   p.stats.created,
		Discarded: p.stats.discarded,
		Hits:      p.stats.hits,
		Misses:    p.stats.misses,
	}
}

// Len returns the number of idle resources currently available for reuse.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Cap returns the pool's capacity ceiling.
func (p *Pool[T]) Cap() int {
	return p.maxSize
}

// totalLocked is the number of capacity slots currently accounted for:
// idle resources, checked-out resources, and in-flight factory calls.
func (p *Pool[T]) totalLocked() int {
	return len(p.idle) + len(p.inUse) + p.creating
}

// popIdleLocked removes the top of the idle stack and marks it in-use.
// Returns nil when no idle resource exists.
func (p *Pool[T]) popIdleLocked() *Resource[T] {
	n := len(p.idle)
	if n == 0 {
		return nil
	}
	r := p.idle[n-1]
	p.idle = p.idle[:n-1]
	r.state = stateInUse
	p.inUse[r] = struct{}{}
	p.stats.hits++
	return r
}

// popWaiterLocked removes and returns the eldest waiter, or nil.
func (p *Pool[T]) popWaiterLocked() *waiter[T] {
	if len(p.waiters) == 0 {
		return nil
	}
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	return w
}

// construct runs the factory for a caller that has already reserved a
// capacity slot (p.creating was incremented under the lock). The reservation
// keeps the capacity invariant intact while the potentially slow factory
// call runs without holding the lock. On failure the reservation is freed,
// or passed to the eldest waiter as a slot grant.
func (p *Pool[T]) construct(ctx context.Context, skipLimiter bool) (*Resource[T], error) {
	if p.conf.limiter != nil && !skipLimiter {
		if err := p.conf.limiter.Wait(ctx); err != nil {
			p.releaseSlot()
			return nil, err
		}
	}

	val, err := p.factory(ctx)
	if err != nil {
		p.releaseSlot()
		return nil, fmt.Errorf("factory call failed: %w", err)
	}

	r := p.wrap(val)

	p.mu.Lock()
	p.creating--
	if p.closed {
		p.stats.created++
		p.stats.discarded++
		p.mu.Unlock()
		p.destroy(r)
		return nil, ErrPoolClosed
	}
	r.state = stateInUse
	p.inUse[r] = struct{}{}
	p.stats.created++
	p.stats.misses++
	p.mu.Unlock()

	p.checkedOut(r)
	return r, nil
}

// releaseSlot frees a creation reservation. If callers are waiting, the
// reservation is handed to the eldest one as a slot grant instead, so a
// failed construction cannot strand a waiter behind free capacity.
func (p *Pool[T]) releaseSlot() {
	p.mu.Lock()
	if !p.closed {
		if w := p.popWaiterLocked(); w != nil {
			w.ready <- handoff[T]{grant: true}
			p.mu.Unlock()
			return
		}
	}
	p.creating--
	p.mu.Unlock()
}

// redeem converts a handoff received by a woken waiter into an Acquire
// result.
func (p *Pool[T]) redeem(ctx context.Context, h handoff[T]) (*Resource[T], error) {
	switch {
	case h.res != nil:
		p.checkedOut(h.res)
		return h.res, nil
	case h.grant:
		return p.construct(ctx, false)
	default:
		return nil, ErrPoolClosed
	}
}

// cancelWait removes a waiter whose context finished. If a releaser already
// popped the waiter, its handoff is guaranteed to be sitting in the buffered
// channel (pops and sends happen in the same critical section), so the
// handoff is drained and re-routed: a resource goes back into circulation
// and a slot grant passes to the next waiter.
func (p *Pool[T]) cancelWait(w *waiter[T], cause error) error {
	p.mu.Lock()
	for i, other := range p.waiters {
		if other == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			p.mu.Unlock()
			return cause
		}
	}
	p.mu.Unlock()

	h := <-w.ready
	switch {
	case h.res != nil:
		p.requeue(h.res)
	case h.grant:
		p.releaseSlot()
	}
	return cause
}

// requeue puts a tracked in-use resource back into circulation without
// re-running the reset hook: direct handoff to the eldest waiter if any,
// otherwise onto the idle stack. Discards immediately if the pool closed.
func (p *Pool[T]) requeue(r *Resource[T]) {
	p.mu.Lock()
	if p.closed {
		delete(p.inUse, r)
		p.stats.discarded++
		p.mu.Unlock()
		p.destroy(r)
		return
	}
	if w := p.popWaiterLocked(); w != nil {
		r.state = stateInUse
		w.ready <- handoff[T]{res: r}
		p.mu.Unlock()
		return
	}
	delete(p.inUse, r)
	r.state = stateIdle
	p.idle = append(p.idle, r)
	p.mu.Unlock()
}

// discard permanently removes a tracked in-use resource. When the discard
// frees usable capacity (freeSlot), the eldest waiter receives a slot grant
// so the pool can shrink below capacity and still recover.
func (p *Pool[T]) discard(r *Resource[T], freeSlot bool) {
	p.mu.Lock()
	delete(p.inUse, r)
	p.stats.discarded++
	if freeSlot && !p.closed {
		if w := p.popWaiterLocked(); w != nil {
			p.creating++
			w.ready <- handoff[T]{grant: true}
		}
	}
	p.mu.Unlock()

	debugLog("discarding resource %d", r.id)
	p.destroy(r)
}

// wrap builds the Resource bookkeeping wrapper around a factory-produced
// value.
func (p *Pool[T]) wrap(val T) *Resource[T] {
	return &Resource[T]{
		value:     val,
		id:        p.idSeq.Add(1),
		createdAt: time.Now(),
	}
}

// checkedOut records checkout metadata and fires the acquire hook. Called
// without the lock, after the resource is already tracked as in-use.
func (p *Pool[T]) checkedOut(r *Resource[T]) {
	r.touch()
	if p.conf.onAcquire != nil {
		p.conf.onAcquire(r.id)
	}
}

// destroy runs the teardown and discard hooks for a resource that has
// already been untracked.
func (p *Pool[T]) destroy(r *Resource[T]) {
	if p.conf.teardown != nil {
		p.conf.teardown(r.value)
	}
	if p.conf.onDiscard != nil {
		p.conf.onDiscard(r.id)
	}
}
