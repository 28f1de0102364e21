package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Fake is a deterministic Scheduler for tests. Nothing runs in the
// background: Dispatch executes immediately on the calling goroutine,
// timers fire only when the clock is moved with Advance, and idle
// callbacks run only when RunIdle is called.
type Fake struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
	idle   []func()
	nextID uint64
}

type fakeTimer struct {
	id       uint64
	deadline time.Duration
	period   time.Duration // 0 for one-shot
	fn       func()
	stopped  bool
}

// NewFake creates a Fake scheduler with its clock at zero.
func NewFake() *Fake {
	return &Fake{}
}

// Dispatch runs fn synchronously.
func (f *Fake) Dispatch(fn func()) {
	fn()
}

// Interval registers a repeating timer that fires during Advance.
func (f *Fake) Interval(d time.Duration, fn func()) Cancel {
	return f.addTimer(d, d, fn)
}

// After registers a one-shot timer that fires during Advance.
func (f *Fake) After(d time.Duration, fn func()) Cancel {
	return f.addTimer(d, 0, fn)
}

// OnIdle queues fn for the next RunIdle call.
func (f *Fake) OnIdle(fn func()) {
	f.mu.Lock()
	f.idle = append(f.idle, fn)
	f.mu.Unlock()
}

func (f *Fake) addTimer(d, period time.Duration, fn func()) Cancel {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	t := &fakeTimer{
		id:       f.nextID,
		deadline: f.now + d,
		period:   period,
		fn:       fn,
	}
	f.timers = append(f.timers, t)

	return func() {
		f.mu.Lock()
		t.stopped = true
		f.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing every due timer in deadline
// order. Repeating timers fire once per elapsed period. Callbacks run on
// the calling goroutine with the clock set to their own deadline, so a
// callback that schedules a new timer sees a consistent clock.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d

	for {
		t := f.nextDue(target)
		if t == nil {
			break
		}

		f.now = t.deadline
		if t.period > 0 {
			t.deadline += t.period
		} else {
			t.stopped = true
		}
		fn := t.fn

		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}

	f.now = target
	f.compact()
	f.mu.Unlock()
}

// nextDue returns the earliest live timer with deadline <= target,
// preferring lower IDs on ties so firing order is stable.
func (f *Fake) nextDue(target time.Duration) *fakeTimer {
	live := f.timers[:0:0]
	for _, t := range f.timers {
		if !t.stopped && t.deadline <= target {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].deadline != live[j].deadline {
			return live[i].deadline < live[j].deadline
		}
		return live[i].id < live[j].id
	})
	return live[0]
}

// compact drops stopped timers.
func (f *Fake) compact() {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	f.timers = live
}

// RunIdle drains the idle queue, running callbacks in registration order.
// Callbacks queued while draining run in the same pass.
func (f *Fake) RunIdle() {
	for {
		f.mu.Lock()
		if len(f.idle) == 0 {
			f.mu.Unlock()
			return
		}
		fn := f.idle[0]
		f.idle = f.idle[1:]
		f.mu.Unlock()

		fn()
	}
}

// Now reports the fake clock's current reading.
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

var _ Scheduler = (*Fake)(nil)
