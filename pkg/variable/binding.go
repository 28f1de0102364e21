package variable

// Observable is a read-only, type-erased view of a reactive value. It is
// what DeriveN and toolkit infrastructure (the inspect server, widget
// bindings) consume: current value plus change notification, no write
// access. Both *Variable[T] and *Binding[T] implement it.
type Observable interface {
	// Value returns the current value.
	Value() any

	// OnChange registers fn to run on every future change and returns a
	// cancel function. Cancel is safe to call more than once.
	OnChange(fn func()) (cancel func())
}

// Binding is a lazy, read-only projection of a variable (or of another
// binding) through an optional transform. Bindings are what declarative
// view code holds: they can read and subscribe but never write back.
//
// A binding does not cache: Get re-reads the source and re-applies the
// transform every time, so a binding is never staler than its source.
type Binding[T any] struct {
	get func() T
	on  func(func()) func()
}

// Bind returns a read-only projection of the variable.
func (v *Variable[T]) Bind() *Binding[T] {
	return &Binding[T]{get: v.Get, on: v.OnChange}
}

// Get returns the projected value.
func (b *Binding[T]) Get() T {
	return b.get()
}

// Subscribe registers fn to run with the projected value on every change
// of the underlying source. Returns an unsubscribe function.
func (b *Binding[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return b.on(func() {
		fn(b.get())
	})
}

// As returns a new binding that views this one through fn.
func (b *Binding[T]) As(fn func(T) T) *Binding[T] {
	return As(b, fn)
}

// Value returns the projected value type-erased. Implements Observable.
func (b *Binding[T]) Value() any {
	return b.get()
}

// OnChange registers a bare change callback. Implements Observable.
func (b *Binding[T]) OnChange(fn func()) (cancel func()) {
	return b.on(fn)
}

// As builds a binding that views src through fn, possibly changing the
// value type. This is the package-level form of Binding.As; Go methods
// cannot introduce new type parameters.
func As[T, U any](src *Binding[T], fn func(T) U) *Binding[U] {
	return &Binding[U]{
		get: func() U { return fn(src.get()) },
		on:  src.on,
	}
}

// BindAs is shorthand for As(v.Bind(), fn): a one-step transformed
// projection of a variable.
func BindAs[T, U any](v *Variable[T], fn func(T) U) *Binding[U] {
	return As(v.Bind(), fn)
}

var _ Observable = (*Binding[int])(nil)
