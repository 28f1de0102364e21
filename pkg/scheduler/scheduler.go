package scheduler

import (
	"sync"
	"time"
)

// Cancel stops a scheduled timer. It is safe to call more than once;
// calls after the first are no-ops.
type Cancel func()

// Scheduler is the clock and dispatch dependency of the reactive core.
//
// Implementations must run all dispatched functions sequentially: no two
// callbacks scheduled on the same Scheduler ever execute concurrently.
type Scheduler interface {
	// Dispatch queues fn to run on the scheduler's loop.
	Dispatch(fn func())

	// Interval invokes fn repeatedly, every d, until cancelled.
	// The first invocation happens after d, not immediately.
	Interval(d time.Duration, fn func()) Cancel

	// After invokes fn once, after d, unless cancelled first.
	After(d time.Duration, fn func()) Cancel

	// OnIdle queues fn to run once the task queue has drained.
	// Idle callbacks always run after every task already queued at the
	// time of the call, which makes OnIdle suitable for deferred teardown.
	OnIdle(fn func())
}

// defaultLoop is the process-wide scheduler used by variables that are not
// given an explicit one. Started lazily on first use and never stopped.
var (
	defaultLoop     *Loop
	defaultLoopOnce sync.Once
)

// Default returns the process-wide event loop, starting it on first call.
func Default() Scheduler {
	defaultLoopOnce.Do(func() {
		defaultLoop = NewLoop()
	})
	return defaultLoop
}
