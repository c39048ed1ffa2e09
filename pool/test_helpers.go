package pool

import (
	"testing"
	"time"
)

// waitForWaiters polls until exactly n callers are parked in Acquire, so
// tests can order blocking goroutines deterministically.
func waitForWaiters[T any](t *testing.T, p *Pool[T], n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Stats().Waiting == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d blocked acquirers, have %d", n, p.Stats().Waiting)
}

// timeoutC returns a channel that fires when a test has waited long enough
// to call a blocked goroutine stuck.
func timeoutC(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}
