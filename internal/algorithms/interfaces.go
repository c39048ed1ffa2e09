package algorithms

import "time"

// BackoffStrategy decides how long a caller should wait between successive
// attempts to acquire a resource from an exhausted pool.
type BackoffStrategy interface {
	// NextDelay returns the delay before the next attempt.
	// attemptNumber is 0-indexed (0 = first retry after the initial failure).
	NextDelay(attemptNumber int) time.Duration

	// Reset clears any internal state (for stateful strategies like
	// decorrelated jitter). Call it before starting a fresh acquire sequence.
	Reset()
}
