package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_Close_RejectsLaterAcquires(t *testing.T) {
	factory, _ := countingFactory()
	p, err := New(2, factory)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire after close: expected ErrPoolClosed, got %v", err)
	}
	if _, err := p.TryAcquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("TryAcquire after close: expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_Close_Twice(t *testing.T) {
	factory, _ := countingFactory()
	p, _ := New(2, factory)

	if err := p.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("second Close: expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_Close_DrainsIdleThroughTeardown(t *testing.T) {
	factory, _ := countingFactory()
	var torn atomic.Int32
	p, err := New(4, factory,
		WithInitialSize[int](3),
		WithTeardown[int](func(int) { torn.Add(1) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if got := torn.Load(); got != 3 {
		t.Errorf("expected 3 teardowns for the drained idle set, got %d", got)
	}
	s := p.Stats()
	if s.Idle != 0 {
		t.Errorf("expected empty idle set after close, got %d", s.Idle)
	}
	if s.Discarded != 3 {
		t.Errorf("expected 3 discarded, got %d", s.Discarded)
	}
}

func TestPool_Close_InFlightReleaseStillSucceeds(t *testing.T) {
	factory, _ := countingFactory()
	var torn atomic.Int32
	p, err := New(2, factory, WithTeardown[int](func(int) { torn.Add(1) }))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The in-flight user returns its resource cleanly; the pool discards it
	// instead of pooling it.
	if err := p.Release(r); err != nil {
		t.Errorf("Release after close failed: %v", err)
	}
	if got := torn.Load(); got != 1 {
		t.Errorf("expected the returned resource to be torn down, got %d teardowns", got)
	}
	if got := p.Len(); got != 0 {
		t.Errorf("resource must not be pooled after close, got %d idle", got)
	}
}

func TestPool_Close_ReleaseSkipsReset(t *testing.T) {
	factory, _ := countingFactory()
	var resets atomic.Int32
	p, err := New(2, factory, WithReset[int](func(int) error {
		resets.Add(1)
		return nil
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, _ := p.Acquire(context.Background())
	_ = p.Close()

	if err := p.Release(r); err != nil {
		t.Fatalf("Release after close failed: %v", err)
	}
	// A discarded resource is never restored for reuse.
	if got := resets.Load(); got != 0 {
		t.Errorf("expected no reset for a post-close release, got %d", got)
	}
}

func TestPool_Close_WakesBlockedAcquirers(t *testing.T) {
	factory, _ := countingFactory()
	p, err := New(1, factory)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := p.Acquire(context.Background())
			errs <- err
		}()
	}

	waitForWaiters(t, p, 2)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for i := range 2 {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrPoolClosed) {
				t.Errorf("waiter %d: expected ErrPoolClosed, got %v", i, err)
			}
		case <-timeoutC(t):
			t.Fatal("blocked acquirer was not woken by Close")
		}
	}
}
