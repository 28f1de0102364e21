package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a single-goroutine event loop. Tasks queued with Dispatch run in
// FIFO order; idle callbacks queued with OnIdle run only when the task queue
// is empty. Timer callbacks (Interval, After) are delivered onto the same
// goroutine, so work scheduled on one Loop never runs concurrently.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	idle    []func()
	stopped bool
}

// NewLoop creates a Loop and starts its goroutine.
func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// run is the loop body. It drains tasks first, then idle callbacks, and
// blocks when both queues are empty.
func (l *Loop) run() {
	for {
		l.mu.Lock()
		for len(l.tasks) == 0 && len(l.idle) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.mu.Unlock()
			return
		}

		var fn func()
		if len(l.tasks) > 0 {
			fn = l.tasks[0]
			l.tasks = l.tasks[1:]
		} else {
			fn = l.idle[0]
			l.idle = l.idle[1:]
		}
		l.mu.Unlock()

		fn()
	}
}

// Dispatch queues fn to run on the loop goroutine.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.cond.Signal()
}

// OnIdle queues fn to run once the task queue has drained.
func (l *Loop) OnIdle(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
	l.cond.Signal()
}

// Interval invokes fn on the loop goroutine every d until cancelled.
func (l *Loop) Interval(d time.Duration, fn func()) Cancel {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.Dispatch(fn)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// After invokes fn on the loop goroutine once, after d, unless cancelled.
func (l *Loop) After(d time.Duration, fn func()) Cancel {
	// Atomic guard so a cancel racing the timer cannot double-fire.
	var fired atomic.Bool
	timer := time.AfterFunc(d, func() {
		if fired.CompareAndSwap(false, true) {
			l.Dispatch(fn)
		}
	})

	return func() {
		fired.Store(true)
		timer.Stop()
	}
}

// Stop shuts the loop down. Queued tasks and idle callbacks are discarded;
// subsequent Dispatch/OnIdle calls are no-ops. Timers created before Stop
// keep ticking until their own Cancel is called, but their dispatches are
// dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.tasks = nil
	l.idle = nil
	l.mu.Unlock()
	l.cond.Broadcast()
}

var _ Scheduler = (*Loop)(nil)
