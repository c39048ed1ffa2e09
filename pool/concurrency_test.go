package pool

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// TestPool_Concurrent_NoDoubleHandout hammers a small pool from many
// goroutines and checks the central correctness property: no resource is
// ever in two callers' hands at once.
func TestPool_Concurrent_NoDoubleHandout(t *testing.T) {
	const (
		maxSize    = 8
		goroutines = 32
		iterations = 200
	)

	factory, _ := countingFactory()
	p, err := New(maxSize, factory)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var held sync.Map // resource id -> struct{}
	var total atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	for range goroutines {
		g.Go(func() error {
			for range iterations {
				r, err := p.Acquire(ctx)
				if err != nil {
					return err
				}

				if _, loaded := held.LoadOrStore(r.ID(), struct{}{}); loaded {
					return errors.New("resource handed to two callers at once")
				}
				total.Add(1)

				if rand.Intn(4) == 0 {
					time.Sleep(time.Microsecond)
				}

				held.Delete(r.ID())
				if err := p.Release(r); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	s := p.Stats()
	if s.InUse != 0 {
		t.Errorf("expected everything released, %d still in use", s.InUse)
	}
	if s.Idle > maxSize {
		t.Errorf("idle set (%d) exceeds capacity %d", s.Idle, maxSize)
	}
	if s.Created > maxSize {
		t.Errorf("factory produced %d resources for a pool of %d", s.Created, maxSize)
	}
	if s.Hits+s.Misses != total.Load() {
		t.Errorf("hits (%d) + misses (%d) != successful acquires (%d)", s.Hits, s.Misses, total.Load())
	}
}

// TestPool_Concurrent_CapacityNeverExceeded interleaves acquires, releases,
// cancellations, and discards while asserting the capacity ceiling.
func TestPool_Concurrent_CapacityNeverExceeded(t *testing.T) {
	const maxSize = 4

	factory, calls := countingFactory()
	var resets, torn atomic.Int32
	p, err := New(maxSize, factory,
		WithReset[int](func(int) error {
			// Every fifth release discards its resource.
			if resets.Add(1)%5 == 0 {
				return errors.New("unfit")
			}
			return nil
		}),
		WithTeardown[int](func(int) { torn.Add(1) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			for range 100 {
				r, err := p.AcquireTimeout(2 * time.Second)
				if err != nil {
					return err
				}
				err = p.Release(r)
				if err != nil && !isResetFailure(err) {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	s := p.Stats()
	if s.Idle+s.InUse > maxSize {
		t.Errorf("capacity exceeded: %+v", s)
	}
	if s.Discarded == 0 {
		t.Error("expected some resources to be discarded by the failing reset")
	}
	if int64(torn.Load()) != s.Discarded {
		t.Errorf("teardown ran %d times for %d discards", torn.Load(), s.Discarded)
	}
	if int64(calls.Load()) != s.Created {
		t.Errorf("factory ran %d times but pool counted %d created", calls.Load(), s.Created)
	}
}

func isResetFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrUnknownResource) && !errors.Is(err, ErrPoolClosed)
}

// TestPool_Concurrent_CloseDuringTraffic closes the pool while callers are
// acquiring and releasing; every caller must get either a resource (released
// cleanly afterwards) or ErrPoolClosed, never a hang or a panic.
func TestPool_Concurrent_CloseDuringTraffic(t *testing.T) {
	factory, _ := countingFactory()
	p, err := New(4, factory)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			for {
				r, err := p.AcquireTimeout(time.Second)
				switch {
				case errors.Is(err, ErrPoolClosed):
					return nil
				case err != nil:
					return err
				}
				if err := p.Release(r); err != nil {
					return err
				}
			}
		})
	}

	time.Sleep(10 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := p.Stats().InUse; got != 0 {
		t.Errorf("expected all resources returned after close, %d in use", got)
	}
}
