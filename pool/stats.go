package pool

// Stats is a point-in-time snapshot of a pool's counters.
//
// Fields:
//   - Idle: resources currently sitting in the pool, ready for reuse
//   - InUse: resources currently checked out by callers
//   - Waiting: callers currently blocked in Acquire
//   - Created: total resources the factory has produced
//   - Discarded: total resources permanently removed (failed resets,
//     releases after Close, and the idle set drained by Close)
//   - Hits: acquires satisfied by reusing an idle resource
//   - Misses: acquires that had to invoke the factory
type Stats struct {
	Idle    int
	InUse   int
	Waiting int

	Created   int64
	Discarded int64
	Hits      int64
	Misses    int64
}

// counters holds the monotonic portion of Stats. Guarded by the pool mutex.
type counters struct {
	created   int64
	discarded int64
	hits      int64
	misses    int64
}
