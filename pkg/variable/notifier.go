package variable

import "sync"

// connection is one registered listener. Connections are kept in connect
// order because changed-listeners must fire in subscription order.
type connection[F any] struct {
	id uint64
	fn F
}

// Notifier is the change-notification hub owned by a Variable. It carries
// three independent listener lists (changed, error, dropped), each
// addressable by the connection ID returned at registration.
//
// Emission uses the copy-before-notify pattern: the listener list is
// snapshotted under the lock and callbacks run outside it, so a listener
// may connect, disconnect, or even drop the owning variable without
// deadlocking.
type Notifier struct {
	mu       sync.Mutex
	changed  []connection[func()]
	errs     []connection[func(error)]
	dropped  []connection[func()]
	disposed bool
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// ConnectChanged registers fn to run on every change emission.
// Returns the connection ID; 0 if the notifier is already disposed.
func (n *Notifier) ConnectChanged(fn func()) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return 0
	}
	id := nextID()
	n.changed = append(n.changed, connection[func()]{id, fn})
	return id
}

// ConnectError registers fn to run on every error emission.
func (n *Notifier) ConnectError(fn func(error)) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return 0
	}
	id := nextID()
	n.errs = append(n.errs, connection[func(error)]{id, fn})
	return id
}

// ConnectDropped registers fn to run when the dropped event is emitted.
func (n *Notifier) ConnectDropped(fn func()) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return 0
	}
	id := nextID()
	n.dropped = append(n.dropped, connection[func()]{id, fn})
	return id
}

// Disconnect removes the connection with the given ID from whichever list
// holds it. Unknown or already-removed IDs are ignored, which makes
// unsubscribe handles safe to call repeatedly. Removal preserves the order
// of the remaining connections.
func (n *Notifier) Disconnect(id uint64) {
	if id == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = removeConn(n.changed, id)
	n.errs = removeConn(n.errs, id)
	n.dropped = removeConn(n.dropped, id)
}

func removeConn[F any](conns []connection[F], id uint64) []connection[F] {
	for i, c := range conns {
		if c.id == id {
			return append(conns[:i:i], conns[i+1:]...)
		}
	}
	return conns
}

// EmitChanged invokes every changed-listener synchronously, in connect
// order.
func (n *Notifier) EmitChanged() {
	for _, fn := range n.snapshotChanged() {
		fn()
	}
}

// EmitError invokes every error-listener with err.
func (n *Notifier) EmitError(err error) {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	fns := make([]func(error), 0, len(n.errs))
	for _, c := range n.errs {
		fns = append(fns, c.fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

// EmitDropped invokes every dropped-listener.
func (n *Notifier) EmitDropped() {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	fns := make([]func(), 0, len(n.dropped))
	for _, c := range n.dropped {
		fns = append(fns, c.fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (n *Notifier) snapshotChanged() []func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return nil
	}
	fns := make([]func(), 0, len(n.changed))
	for _, c := range n.changed {
		fns = append(fns, c.fn)
	}
	return fns
}

// Dispose tears the notifier down: all connections are released and every
// later Connect or Emit is a no-op. The owning variable defers this call
// to the scheduler's idle phase so dispatch already in flight completes.
func (n *Notifier) Dispose() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disposed = true
	n.changed = nil
	n.errs = nil
	n.dropped = nil
}

// Disposed reports whether Dispose has run.
func (n *Notifier) Disposed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.disposed
}
