package variable

import (
	"fmt"
	"sync"

	"github.com/marleypowell/astal/pkg/scheduler"
)

// Variable is a reactive value container. It holds a current value, owns a
// Notifier for change/error/dropped events, and carries at most one active
// driver (poll or watch) feeding it automatically.
//
// Reads and writes are safe from any goroutine. Subscriber dispatch is
// synchronous: Set does not return until every subscriber registered before
// the call has run, in subscription order.
type Variable[T any] struct {
	id uint64

	mu    sync.Mutex
	value T

	// equal gates change notification. Nil means defaultEquals.
	equal func(T, T) bool

	notifier *Notifier
	sched    scheduler.Scheduler

	// errConn is the connection ID of the registered error handler.
	// At most one is active; OnError replaces it.
	errConn uint64

	// driver is the active poll or watch state; kind driverNone when idle.
	driver driverState

	// generation is bumped whenever a driver starts or stops and on drop.
	// Async completions carry the generation they were started under and
	// are discarded when it is stale.
	generation uint64

	dropped bool
}

// Option configures a Variable at construction.
type Option func(*options)

type options struct {
	sched scheduler.Scheduler
}

// WithScheduler runs the variable's timers and deferred teardown on s
// instead of the process-wide default loop. Tests use this to inject a
// deterministic scheduler.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// New creates a variable holding initial.
func New[T any](initial T, opts ...Option) *Variable[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.sched == nil {
		o.sched = scheduler.Default()
	}

	return &Variable[T]{
		id:       nextID(),
		value:    initial,
		notifier: NewNotifier(),
		sched:    o.sched,
	}
}

// Get returns the current value. No side effects.
func (v *Variable[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the current value and notifies subscribers. Setting a value
// equal to the current one is a no-op: no notification fires. Panics if the
// variable has been dropped.
func (v *Variable[T]) Set(value T) {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		panic(ErrDropped)
	}
	changed := !v.equals(v.value, value)
	if changed {
		v.value = value
	}
	v.mu.Unlock()

	if changed {
		v.notifier.EmitChanged()
	}
}

// Update atomically computes the new value from the current one and applies
// it with Set semantics.
func (v *Variable[T]) Update(fn func(T) T) {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		panic(ErrDropped)
	}
	next := fn(v.value)
	changed := !v.equals(v.value, next)
	if changed {
		v.value = next
	}
	v.mu.Unlock()

	if changed {
		v.notifier.EmitChanged()
	}
}

// Subscribe registers fn to run on every future change. The subscriber
// observes committed state: it is handed the result of Get at dispatch
// time, not the value passed to Set. The returned function removes exactly
// this registration and is safe to call more than once.
func (v *Variable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	id := v.notifier.ConnectChanged(func() {
		fn(v.Get())
	})
	return func() {
		v.notifier.Disconnect(id)
	}
}

// OnChange registers fn to run on every future change, without handing it
// the value. This is the type-erased hook behind Observable; most callers
// want Subscribe.
func (v *Variable[T]) OnChange(fn func()) (cancel func()) {
	id := v.notifier.ConnectChanged(fn)
	return func() {
		v.notifier.Disconnect(id)
	}
}

// OnError registers the error handler invoked when a driver fails. At most
// one handler is active; registering a new one replaces the previous.
// Without a handler, driver errors are silently discarded at this layer.
func (v *Variable[T]) OnError(fn func(error)) *Variable[T] {
	v.mu.Lock()
	old := v.errConn
	v.mu.Unlock()

	if old != 0 {
		v.notifier.Disconnect(old)
	}

	id := v.notifier.ConnectError(fn)
	v.mu.Lock()
	v.errConn = id
	v.mu.Unlock()
	return v
}

// OnDropped registers fn to run exactly once when the variable is dropped,
// before the deferred notifier teardown.
func (v *Variable[T]) OnDropped(fn func()) *Variable[T] {
	v.notifier.ConnectDropped(fn)
	return v
}

// Drop stops any active driver, fires the dropped handlers, and schedules
// the notifier's disposal for the scheduler's next idle pass. The deferral
// guarantees that notification dispatch already in progress completes
// before teardown. Calling Drop again is a no-op.
func (v *Variable[T]) Drop() {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	v.dropped = true
	v.generation++
	stop := v.takeDriverLocked()
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
	v.notifier.EmitDropped()
	v.sched.OnIdle(v.notifier.Dispose)
}

// IsDropped reports whether Drop has been called.
func (v *Variable[T]) IsDropped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropped
}

// WithEquals configures a custom equality function for the change gate.
// Useful when reflect.DeepEqual is too expensive or has the wrong
// semantics for T.
func (v *Variable[T]) WithEquals(fn func(T, T) bool) *Variable[T] {
	v.mu.Lock()
	v.equal = fn
	v.mu.Unlock()
	return v
}

// ID returns the unique identifier of this variable.
func (v *Variable[T]) ID() uint64 {
	return v.id
}

// Value returns the current value type-erased. Implements Observable.
func (v *Variable[T]) Value() any {
	return v.Get()
}

// String renders a tagged representation of the current value for
// debugging and logging.
func (v *Variable[T]) String() string {
	return fmt.Sprintf("Variable[%v]", v.Get())
}

// equals applies the configured equality function. Callers hold v.mu.
func (v *Variable[T]) equals(a, b T) bool {
	if v.equal != nil {
		return v.equal(a, b)
	}
	return defaultEquals(a, b)
}

// driverSet applies a driver-produced value. Unlike Set it is silent when
// the variable was dropped or the driver generation is stale: a late
// completion from a cancelled driver must never resurrect its state.
func (v *Variable[T]) driverSet(gen uint64, value T) {
	v.mu.Lock()
	if v.dropped || gen != v.generation {
		v.mu.Unlock()
		return
	}
	changed := !v.equals(v.value, value)
	if changed {
		v.value = value
	}
	v.mu.Unlock()

	if changed {
		v.notifier.EmitChanged()
	}
}

// setQuiet applies value with Set semantics but is silent after Drop.
// Derived recomputes use it: the source's dispatch snapshot may still hold
// a recompute for a derived variable dropped earlier in the same dispatch,
// and that late recompute must be a no-op, not a panic.
func (v *Variable[T]) setQuiet(value T) {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	changed := !v.equals(v.value, value)
	if changed {
		v.value = value
	}
	v.mu.Unlock()

	if changed {
		v.notifier.EmitChanged()
	}
}

// reportError routes a driver failure to the error handler, discarding it
// when the originating driver generation is stale.
func (v *Variable[T]) reportError(gen uint64, err error) {
	v.mu.Lock()
	stale := v.dropped || gen != v.generation
	v.mu.Unlock()
	if stale {
		return
	}
	v.notifier.EmitError(err)
}

var _ Observable = (*Variable[int])(nil)
var _ fmt.Stringer = (*Variable[int])(nil)
