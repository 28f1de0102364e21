// Package astal provides the public API for the astal reactive toolkit.
//
// This is the recommended import for most applications:
//
//	import "github.com/marleypowell/astal"
//
// Usage:
//
//	count := astal.New(0)
//	unsubscribe := count.Subscribe(func(n int) { fmt.Println(n) })
//	doubled := astal.Derive(count, func(n int) int { return n * 2 })
package astal

import (
	"github.com/marleypowell/astal/pkg/scheduler"
	"github.com/marleypowell/astal/pkg/variable"
)

// =============================================================================
// Reactive primitives (re-export from pkg/variable)
// =============================================================================

// Variable is a reactive value container driven by sets, polls, watches,
// or observed signals.
type Variable[T any] = variable.Variable[T]

// Binding is a read-only projection of a variable.
type Binding[T any] = variable.Binding[T]

// Observable is the type-erased read-only view over variables and bindings.
type Observable = variable.Observable

// Notifier is the per-variable change-notification hub.
type Notifier = variable.Notifier

// Option configures a variable at construction.
type Option = variable.Option

// SignalSource is the capability interface bridged by Observe.
type SignalSource = variable.SignalSource

// SignalPair names one signal on one source for ObserveMany.
type SignalPair = variable.SignalPair

// New creates a new reactive variable with the given initial value.
//
// Example:
//
//	count := astal.New(0)
//	count.Set(1)
//	value := count.Get() // 1
func New[T any](initial T, opts ...Option) *Variable[T] {
	return variable.New(initial, opts...)
}

// Derive creates a variable whose value tracks fn over src.
//
// Example:
//
//	doubled := astal.Derive(count, func(n int) int { return n * 2 })
func Derive[T, U any](src *Variable[T], fn func(T) U, opts ...Option) *Variable[U] {
	return variable.Derive(src, fn, opts...)
}

// Derive2 combines two variables positionally.
func Derive2[A, B, R any](a *Variable[A], b *Variable[B], fn func(A, B) R, opts ...Option) *Variable[R] {
	return variable.Derive2(a, b, fn, opts...)
}

// Derive3 combines three variables positionally.
func Derive3[A, B, C, R any](a *Variable[A], b *Variable[B], c *Variable[C], fn func(A, B, C) R, opts ...Option) *Variable[R] {
	return variable.Derive3(a, b, c, fn, opts...)
}

// DeriveN combines an ordered list of observables; a nil transform
// collects the current values into a []any.
var DeriveN = variable.DeriveN

// Copy creates a pass-through derived variable.
func Copy[T any](src *Variable[T], opts ...Option) *Variable[T] {
	return variable.Copy(src, opts...)
}

// As projects a binding through a transform, possibly changing its type.
func As[T, U any](b *Binding[T], fn func(T) U) *Binding[U] {
	return variable.As(b, fn)
}

// BindAs is shorthand for As(v.Bind(), fn).
func BindAs[T, U any](v *Variable[T], fn func(T) U) *Binding[U] {
	return variable.BindAs(v, fn)
}

// WithScheduler injects the scheduler used for a variable's timers and
// deferred teardown.
var WithScheduler = variable.WithScheduler

// Sentinel errors (re-export from pkg/variable)
var (
	ErrDropped     = variable.ErrDropped
	ErrBadInterval = variable.ErrBadInterval
	ErrNoTransform = variable.ErrNoTransform
)

// =============================================================================
// Scheduling (re-export from pkg/scheduler)
// =============================================================================

// Scheduler is the clock and dispatch dependency of the reactive core.
type Scheduler = scheduler.Scheduler

// NewLoop creates a single-goroutine event loop scheduler.
var NewLoop = scheduler.NewLoop

// DefaultScheduler returns the process-wide event loop.
var DefaultScheduler = scheduler.Default
