package variable

import (
	"context"
	"sync"
	"time"

	"github.com/marleypowell/astal/pkg/process"
)

// driverKind discriminates the driver union. A variable has exactly one
// kind active at a time; starting one kind stops the other first.
type driverKind int

const (
	driverNone driverKind = iota
	driverPoll
	driverWatch
)

// driverState is the tagged union of poll and watch state. Expressing the
// two drivers as one field makes "both active at once" unrepresentable.
type driverState struct {
	kind driverKind

	// stop cancels the timer or kills the subprocess. Idempotent.
	stop func()

	// tick forces an immediate poll tick. Poll drivers only.
	tick func()
}

// Seams for tests: command execution is routed through these so driver
// behavior can be exercised without spawning real processes.
var (
	execCommand     = process.Exec
	startSubprocess = func(argv []string, onLine func(string), onError func(error)) subprocessHandle {
		return process.Subprocess(argv, onLine, onError)
	}
)

type subprocessHandle interface {
	Kill()
}

// Poll starts a recurring timer that, every `every`, computes the next
// value from the current one and applies it with Set semantics. Any active
// poll or watch driver is stopped first. Panics if every is not positive
// or the variable has been dropped.
func (v *Variable[T]) Poll(every time.Duration, fn func(prev T) T) *Variable[T] {
	checkInterval(every)
	gen := v.beginDriver()

	tick := func() {
		if !v.currentGen(gen) {
			return
		}
		v.driverSet(gen, fn(v.Get()))
	}

	cancel := v.sched.Interval(every, tick)
	v.installDriver(gen, driverState{kind: driverPoll, stop: stopOnce(cancel), tick: tick})
	return v
}

// PollCommand starts a recurring timer that executes argv once per tick.
// On success, transform maps the command output and the previous value to
// the next value; on failure, the error is routed to the error handler and
// the value is left untouched for that tick.
//
// A nil transform is allowed when T is string: the raw output is stored
// as-is. For any other T a nil transform reports ErrNoTransform.
//
// Ticks are not re-entrant on the value: a slow command does not block the
// timer, and overlapping completions apply in completion order through the
// equality-gated set.
func (v *Variable[T]) PollCommand(every time.Duration, argv []string, transform func(out string, prev T) (T, error)) *Variable[T] {
	checkInterval(every)
	gen := v.beginDriver()
	apply := commandTransform(transform)

	tick := func() {
		if !v.currentGen(gen) {
			return
		}
		execCommand(argv,
			func(out string) { v.applyOutput(gen, out, apply) },
			func(err error) { v.reportError(gen, err) },
		)
	}

	cancel := v.sched.Interval(every, tick)
	v.installDriver(gen, driverState{kind: driverPoll, stop: stopOnce(cancel), tick: tick})
	return v
}

// PollContext starts a recurring timer that runs fetch asynchronously once
// per tick. The context is cancelled when the driver stops, the driver is
// replaced, or the variable is dropped; completions from a cancelled tick
// are discarded. This is the entry point for network-backed poll sources
// such as those in pkg/sources.
func (v *Variable[T]) PollContext(every time.Duration, fetch func(ctx context.Context, prev T) (T, error)) *Variable[T] {
	checkInterval(every)
	gen := v.beginDriver()
	ctx, cancelCtx := context.WithCancel(context.Background())

	tick := func() {
		if !v.currentGen(gen) {
			return
		}
		prev := v.Get()
		go func() {
			next, err := fetch(ctx, prev)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				v.reportError(gen, err)
				return
			}
			v.driverSet(gen, next)
		}()
	}

	cancelTimer := v.sched.Interval(every, tick)
	stop := stopOnce(func() {
		cancelCtx()
		cancelTimer()
	})
	v.installDriver(gen, driverState{kind: driverPoll, stop: stop, tick: tick})
	return v
}

// PollNow forces an immediate tick of the active poll driver, in addition
// to the regular schedule. No-op when no poll is active.
func (v *Variable[T]) PollNow() {
	v.mu.Lock()
	tick := v.driver.tick
	active := v.driver.kind == driverPoll
	v.mu.Unlock()

	if active && tick != nil {
		v.sched.Dispatch(tick)
	}
}

// StopPoll cancels the active poll driver, releasing its timer. No-op when
// no poll is active; safe to call repeatedly.
func (v *Variable[T]) StopPoll() {
	v.stopDriverOfKind(driverPoll)
}

// Watch starts a long-running subprocess and applies transform to every
// line it writes to stdout. Any active poll driver is stopped first.
// Process failure is routed to the error handler; the subprocess is killed
// when the driver is stopped, replaced, or the variable dropped.
//
// The nil-transform rule matches PollCommand.
func (v *Variable[T]) Watch(argv []string, transform func(line string, prev T) (T, error)) *Variable[T] {
	gen := v.beginDriver()
	apply := commandTransform(transform)

	handle := startSubprocess(argv,
		func(line string) { v.applyOutput(gen, line, apply) },
		func(err error) { v.reportError(gen, err) },
	)

	v.installDriver(gen, driverState{kind: driverWatch, stop: stopOnce(handle.Kill)})
	return v
}

// StopWatch kills the active watch subprocess. No-op when no watch is
// active; safe to call repeatedly.
func (v *Variable[T]) StopWatch() {
	v.stopDriverOfKind(driverWatch)
}

// checkInterval enforces the positive-interval precondition for polls.
func checkInterval(every time.Duration) {
	if every <= 0 {
		panic(ErrBadInterval)
	}
}

// beginDriver invalidates the previous driver generation and tears the
// previous driver down. The returned generation token identifies the
// driver about to start; completions carrying an older token are
// discarded.
func (v *Variable[T]) beginDriver() uint64 {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		panic(ErrDropped)
	}
	v.generation++
	gen := v.generation
	stop := v.takeDriverLocked()
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
	return gen
}

// installDriver records the new driver state unless it was already
// superseded while starting up (a concurrent Drop or driver start).
func (v *Variable[T]) installDriver(gen uint64, d driverState) {
	v.mu.Lock()
	if v.dropped || gen != v.generation {
		v.mu.Unlock()
		if d.stop != nil {
			d.stop()
		}
		return
	}
	v.driver = d
	v.mu.Unlock()
}

// takeDriverLocked clears the driver state and returns its stop function.
// Callers hold v.mu and invoke the returned function after unlocking.
func (v *Variable[T]) takeDriverLocked() func() {
	stop := v.driver.stop
	v.driver = driverState{}
	return stop
}

// stopDriverOfKind stops the active driver if it is of the given kind,
// invalidating its generation so in-flight completions are discarded.
func (v *Variable[T]) stopDriverOfKind(kind driverKind) {
	v.mu.Lock()
	if v.driver.kind != kind {
		v.mu.Unlock()
		return
	}
	v.generation++
	stop := v.takeDriverLocked()
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// currentGen reports whether gen is still the live driver generation.
func (v *Variable[T]) currentGen(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.dropped && gen == v.generation
}

// applyOutput maps driver output to the next value and applies it; a
// transform error goes to the error handler and skips the set.
func (v *Variable[T]) applyOutput(gen uint64, out string, transform func(string, T) (T, error)) {
	if !v.currentGen(gen) {
		return
	}
	next, err := transform(out, v.Get())
	if err != nil {
		v.reportError(gen, err)
		return
	}
	v.driverSet(gen, next)
}

// commandTransform substitutes the identity transform for nil. Identity is
// only expressible when T is string; other types get ErrNoTransform at
// tick time, routed through the error handler.
func commandTransform[T any](fn func(string, T) (T, error)) func(string, T) (T, error) {
	if fn != nil {
		return fn
	}
	return func(out string, prev T) (T, error) {
		if next, ok := any(out).(T); ok {
			return next, nil
		}
		var zero T
		return zero, ErrNoTransform
	}
}

// stopOnce wraps a stop function so concurrent teardown paths cannot
// double-release the underlying resource.
func stopOnce(fn func()) func() {
	var once sync.Once
	return func() {
		once.Do(fn)
	}
}
