// Package scheduler provides the cooperative scheduling primitives that
// drive the astal reactive core.
//
// Variables never talk to timers or goroutines directly; they go through a
// Scheduler. The default implementation, Loop, is a single-goroutine event
// loop: all dispatched work runs on one goroutine in FIFO order, and idle
// callbacks run only once the task queue has drained. Tests use Fake, a
// deterministic scheduler with a manual clock, so timer-driven behavior can
// be exercised without sleeping.
//
//	loop := scheduler.NewLoop()
//	defer loop.Stop()
//
//	stop := loop.Interval(time.Second, func() {
//	    // runs on the loop goroutine every second
//	})
//	defer stop()
package scheduler
