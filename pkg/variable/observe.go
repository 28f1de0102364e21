package variable

// SignalSource is the capability interface for push-based external event
// sources bridged with Observe: anything that can connect a handler to a
// named signal and later disconnect it by ID. Toolkit objects (widgets,
// system services) implement this.
type SignalSource interface {
	// Connect registers handler for the named signal and returns a
	// connection ID for Disconnect.
	Connect(signal string, handler func(args ...any)) uint64

	// Disconnect removes a previously connected handler. Unknown IDs are
	// ignored.
	Disconnect(id uint64)
}

// SignalPair names one signal on one source for ObserveMany.
type SignalPair struct {
	Source SignalSource
	Signal string
}

// Observe bridges a named signal into the variable: every firing computes
// a new value from the signal arguments and the current value, and applies
// it with Set semantics. A nil compute re-applies the current value, which
// with the equality gate means no notification; it is only useful for
// sources whose firing is itself the interesting event and whose handlers
// mutate the variable elsewhere.
//
// Observe is independent of the poll/watch drivers: it does not stop them
// and is not stopped by them. All connections are released exactly once
// when the variable is dropped.
func (v *Variable[T]) Observe(source SignalSource, signal string, compute func(args []any, prev T) T) *Variable[T] {
	return v.ObserveMany([]SignalPair{{Source: source, Signal: signal}}, compute)
}

// ObserveMany bridges several signals, all routed to the same computation.
func (v *Variable[T]) ObserveMany(pairs []SignalPair, compute func(args []any, prev T) T) *Variable[T] {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		panic(ErrDropped)
	}
	v.mu.Unlock()

	handler := func(args ...any) {
		v.mu.Lock()
		if v.dropped {
			v.mu.Unlock()
			return
		}
		prev := v.value
		next := prev
		if compute != nil {
			next = compute(args, prev)
		}
		changed := !v.equals(prev, next)
		if changed {
			v.value = next
		}
		v.mu.Unlock()

		if changed {
			v.notifier.EmitChanged()
		}
	}

	type conn struct {
		source SignalSource
		id     uint64
	}
	conns := make([]conn, 0, len(pairs))
	for _, p := range pairs {
		conns = append(conns, conn{p.Source, p.Source.Connect(p.Signal, handler)})
	}

	v.OnDropped(func() {
		for _, c := range conns {
			c.source.Disconnect(c.id)
		}
	})
	return v
}
