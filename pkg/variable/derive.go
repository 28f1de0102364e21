package variable

// Derive builds a variable whose value is fn applied to src's current
// value, now and after every change of src. The derived variable's drop
// handler releases the subscription on src exactly once, so derived
// variables never leak listeners on their sources.
//
// The derived variable is writable like any other, but a subsequent change
// of src overwrites manual sets.
func Derive[T, U any](src *Variable[T], fn func(T) U, opts ...Option) *Variable[U] {
	d := New(fn(src.Get()), opts...)
	unsubscribe := src.Subscribe(func(val T) {
		d.setQuiet(fn(val))
	})
	d.OnDropped(unsubscribe)
	return d
}

// Copy returns a pass-through derived variable: same values as src, own
// subscribers and lifecycle.
func Copy[T any](src *Variable[T], opts ...Option) *Variable[T] {
	return Derive(src, func(v T) T { return v }, opts...)
}

// Derive2 builds a variable combining two sources. Any change of either
// source recomputes over the current values of both, never a stale
// snapshot.
func Derive2[A, B, R any](a *Variable[A], b *Variable[B], fn func(A, B) R, opts ...Option) *Variable[R] {
	d := New(fn(a.Get(), b.Get()), opts...)
	recompute := func() {
		d.setQuiet(fn(a.Get(), b.Get()))
	}
	ua := a.OnChange(recompute)
	ub := b.OnChange(recompute)
	d.OnDropped(func() {
		ua()
		ub()
	})
	return d
}

// Derive3 builds a variable combining three sources.
func Derive3[A, B, C, R any](a *Variable[A], b *Variable[B], c *Variable[C], fn func(A, B, C) R, opts ...Option) *Variable[R] {
	d := New(fn(a.Get(), b.Get(), c.Get()), opts...)
	recompute := func() {
		d.setQuiet(fn(a.Get(), b.Get(), c.Get()))
	}
	ua := a.OnChange(recompute)
	ub := b.OnChange(recompute)
	uc := c.OnChange(recompute)
	d.OnDropped(func() {
		ua()
		ub()
		uc()
	})
	return d
}

// DeriveN builds a variable over an ordered list of dependencies. fn
// receives the current values of all dependencies positionally; any single
// dependency's change triggers a full recompute over the current snapshot
// of every dependency. A nil fn collects the values into a []any.
//
// Dependencies are Observables, so variables and bindings mix freely; a
// variable passed here is read through its projection interface and is
// never mutated by the derived cell.
func DeriveN(deps []Observable, fn func(vals []any) any, opts ...Option) *Variable[any] {
	if fn == nil {
		fn = func(vals []any) any { return vals }
	}

	snapshot := func() []any {
		vals := make([]any, len(deps))
		for i, dep := range deps {
			vals[i] = dep.Value()
		}
		return vals
	}

	d := New(fn(snapshot()), opts...)
	recompute := func() {
		d.setQuiet(fn(snapshot()))
	}

	cancels := make([]func(), len(deps))
	for i, dep := range deps {
		cancels[i] = dep.OnChange(recompute)
	}

	// Each cancel runs exactly once, on drop.
	d.OnDropped(func() {
		for _, cancel := range cancels {
			cancel()
		}
	})
	return d
}
