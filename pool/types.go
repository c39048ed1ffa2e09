package pool

import "context"

// FactoryFunc constructs a new resource value on demand. The pool invokes it
// lazily whenever a caller needs a resource and no idle one is available.
// The context is the one passed to the acquiring call, so a slow constructor
// can honor cancellation. If construction fails, the error is returned to the
// acquiring caller and no capacity is consumed.
//
// Type parameters:
//   - T: The resource value type managed by the pool
type FactoryFunc[T any] func(ctx context.Context) (T, error)

// ResetFunc restores a returned resource to a clean, reusable state before it
// goes back into the idle set. Returning an error marks the resource unfit:
// the pool discards it instead of pooling it, and the error is surfaced to
// the Release caller. The pool recovers the lost capacity by creating fresh
// resources on later acquires.
type ResetFunc[T any] func(value T) error

// TeardownFunc destroys a resource the pool is discarding, either because a
// reset reported it unfit or because the pool is closing. It runs outside the
// pool's internal lock.
type TeardownFunc[T any] func(value T)
