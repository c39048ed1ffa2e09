package benchmarks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/utkarsh5026/respool/pool"
)

// buildCost simulates the construction latency a pool amortizes away.
const buildCost = 50 * time.Microsecond

var built atomic.Int64

// slowFactory stands in for an expensive constructor (dialing, handshakes).
func slowFactory(ctx context.Context) (int64, error) {
	time.Sleep(buildCost)
	return built.Add(1), nil
}

// cheapFactory isolates pool overhead from construction cost.
func cheapFactory(ctx context.Context) (int64, error) {
	return built.Add(1), nil
}

func newPool(b *testing.B, size int, factory pool.FactoryFunc[int64], opts ...pool.Option[int64]) *pool.Pool[int64] {
	b.Helper()
	p, err := pool.New(size, factory, opts...)
	if err != nil {
		b.Fatalf("pool.New failed: %v", err)
	}
	b.Cleanup(func() { _ = p.Close() })
	return p
}
