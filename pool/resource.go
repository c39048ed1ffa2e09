package pool

import (
	"sync/atomic"
	"time"
)

// resourceState tracks where a resource currently lives. It is guarded by
// the owning pool's mutex.
type resourceState int

const (
	stateIdle resourceState = iota
	stateInUse
	stateReleasing
)

// Resource wraps a pooled value together with bookkeeping metadata. A
// Resource is handed out by Acquire and must be returned to the same pool
// with Release. The wrapper identity (the pointer) is what the pool tracks,
// so callers must return the exact Resource they were given.
//
// Type parameters:
//   - T: The underlying resource value type
type Resource[T any] struct {
	value     T
	id        uint64
	createdAt time.Time

	lastUsed atomic.Int64 // unix nanoseconds
	useCount atomic.Int64

	state resourceState // guarded by the pool mutex
}

// Value returns the underlying resource value.
func (r *Resource[T]) Value() T {
	return r.value
}

// ID returns the pool-unique identity token of this resource, assigned at
// creation. Useful for diagnostics and for correlating hook invocations.
func (r *Resource[T]) ID() uint64 {
	return r.id
}

// CreatedAt returns when the factory produced this resource.
func (r *Resource[T]) CreatedAt() time.Time {
	return r.createdAt
}

// LastUsedAt returns when this resource was most recently handed to a
// caller. It returns the zero time for a pre-filled resource that has never
// been acquired.
func (r *Resource[T]) LastUsedAt() time.Time {
	ns := r.lastUsed.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// UseCount returns how many times this resource has been acquired.
func (r *Resource[T]) UseCount() int64 {
	return r.useCount.Load()
}

// touch records a checkout on the resource's metadata.
func (r *Resource[T]) touch() {
	r.useCount.Add(1)
	r.lastUsed.Store(time.Now().UnixNano())
}
