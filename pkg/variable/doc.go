// Package variable provides the reactive core of the astal toolkit.
//
// Variable[T] is a mutable value container that notifies subscribers when
// its value changes. Values flow in from three kinds of driver: a recurring
// poll (timer-driven function or command), a watch (long-running subprocess
// streamed line by line), or an observed signal source. At most one poll or
// watch driver is active per variable at any time.
//
// # Core usage
//
//	v := variable.New(0)
//	unsubscribe := v.Subscribe(func(n int) {
//	    fmt.Println("now:", n)
//	})
//	v.Set(1)       // subscribers fire
//	v.Set(1)       // equal value, no notification
//	unsubscribe()
//
// # Drivers
//
//	uptime := variable.New("").
//	    PollCommand(5*time.Second, []string{"uptime", "-p"}, nil).
//	    OnError(func(err error) { log.Println(err) })
//	defer uptime.Drop()
//
// Starting a poll stops any active watch and vice versa; the drivers never
// race each other for the same variable.
//
// # Composition
//
// Derive builds a variable whose value is a function of other variables:
//
//	total := variable.Derive2(a, b, func(x, y int) int { return x + y })
//
// Bindings are read-only projections of a variable, suitable for handing
// to view code that must not mutate state:
//
//	label := variable.As(count.Bind(), strconv.Itoa)
//
// # Lifecycle
//
// Drop stops any active driver, fires the dropped handlers, and defers the
// final notifier teardown to the scheduler's idle phase so in-flight
// notification dispatch completes first. Mutating a dropped variable is a
// programming error and panics.
package variable
