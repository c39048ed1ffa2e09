package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

const (
	maxShiftAttempts = 63 // Prevent overflow in the exponential calculation
)

// exponentialBackoff implements simple exponential backoff.
// Delay formula: initialDelay * 2^attemptNumber, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// NextDelay calculates the exponential backoff delay for the given attempt
// number. Uses bit shifting (2^n) for performance instead of math.Pow.
func (eb *exponentialBackoff) NextDelay(attemptNumber int) time.Duration {
	return calcExponentialDelay(attemptNumber, eb.initialDelay, eb.maxDelay)
}

// Reset does nothing for exponential backoff as it has no internal state.
func (eb *exponentialBackoff) Reset() {}

// jitteredBackoff adds randomization to exponential backoff.
// Delay formula: exponentialDelay * (1 ± jitterFactor)
//
// When many callers hit an exhausted pool at once, plain exponential backoff
// makes them all retry at the same instants and collide again. Jitter spreads
// the retry attempts out.
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64 // 0.0 to 1.0 (e.g., 0.1 = ±10% jitter)
	rng                    *rand.Rand
	mu                     sync.Mutex // Protect RNG access for thread-safety
}

// newJitteredBackoff creates a new jittered backoff strategy.
// jitterFactor should be between 0.0 and 1.0 (typical values: 0.1 to 0.3).
func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clampFloat(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for backoff jitter
	}
}

// NextDelay calculates the jittered exponential backoff delay.
func (jb *jitteredBackoff) NextDelay(attemptNumber int) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	baseDelay := calcExponentialDelay(attemptNumber, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	jitterMultiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	actualDelay := time.Duration(float64(baseDelay) * jitterMultiplier)
	if actualDelay < 0 {
		return 0
	}
	if actualDelay > jb.maxDelay {
		return jb.maxDelay
	}
	return actualDelay
}

// Reset does nothing for jittered backoff (RNG state doesn't need reset).
func (jb *jitteredBackoff) Reset() {}

// decorrelatedJitterBackoff implements AWS-style decorrelated jitter.
// Algorithm: sleep = min(maxDelay, random(initialDelay, prevSleep * 3))
//
// Each delay depends on the previous delay rather than the attempt number,
// which naturally decorrelates concurrent callers contending for the same
// exhausted pool.
//
// Reference: AWS Architecture Blog - "Exponential Backoff And Jitter"
// (Marc Brooker, 2015)
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
type decorrelatedJitterBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	prevDelay    time.Duration
	rng          *rand.Rand
	mu           sync.Mutex
}

func newDecorrelatedJitterBackoff(initialDelay, maxDelay time.Duration) *decorrelatedJitterBackoff {
	return &decorrelatedJitterBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		prevDelay:    initialDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for backoff jitter
	}
}

// NextDelay calculates the decorrelated jitter delay.
// Each delay is randomly chosen between initialDelay and 3x the previous
// delay, capped at maxDelay.
func (djb *decorrelatedJitterBackoff) NextDelay(attemptNumber int) time.Duration {
	djb.mu.Lock()
	defer djb.mu.Unlock()

	if attemptNumber <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	upperBound := time.Duration(float64(djb.prevDelay) * 3)
	if upperBound > djb.maxDelay {
		upperBound = djb.maxDelay
	}

	delayRange := upperBound - djb.initialDelay
	if delayRange <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	randomOffset := time.Duration(djb.rng.Int63n(int64(delayRange)))
	delay := djb.initialDelay + randomOffset

	djb.prevDelay = delay
	return delay
}

// Reset resets the previous delay to the initial delay.
// Call it when starting a fresh acquire sequence.
func (djb *decorrelatedJitterBackoff) Reset() {
	djb.mu.Lock()
	defer djb.mu.Unlock()
	djb.prevDelay = djb.initialDelay
}

func calcExponentialDelay(attemptNumber int, initialDelay, maxDelay time.Duration) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	if attemptNumber >= maxShiftAttempts {
		return maxDelay
	}

	backoffFactor := int64(1) << uint(attemptNumber)
	delay := time.Duration(backoffFactor) * initialDelay

	if delay > maxDelay || delay < 0 {
		return maxDelay
	}

	return delay
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
