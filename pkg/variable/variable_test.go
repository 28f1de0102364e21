package variable

import (
	"testing"

	"github.com/marleypowell/astal/pkg/scheduler"
)

func TestVariableBasic(t *testing.T) {
	count := New(0, WithScheduler(scheduler.NewFake()))

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSetEqualValueDoesNotNotify(t *testing.T) {
	fake := scheduler.NewFake()
	v := New(3, WithScheduler(fake))

	calls := 0
	v.Subscribe(func(int) { calls++ })

	v.Set(3)
	if calls != 0 {
		t.Errorf("no-op set should not notify, got %d calls", calls)
	}

	v.Set(4)
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}

	v.Set(4)
	if calls != 1 {
		t.Errorf("repeated value should not notify again, got %d calls", calls)
	}
}

func TestSubscribersFireInOrderWithCommittedValue(t *testing.T) {
	v := New("a", WithScheduler(scheduler.NewFake()))

	var got []string
	v.Subscribe(func(s string) { got = append(got, "first:"+s) })
	v.Subscribe(func(s string) { got = append(got, "second:"+s) })

	v.Set("b")

	want := []string{"first:b", "second:b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d dispatches, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dispatch %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSubscriberReadsObserveCommittedState(t *testing.T) {
	v := New(1, WithScheduler(scheduler.NewFake()))

	var seen int
	v.Subscribe(func(int) {
		// Re-reading during dispatch must observe the committed value.
		seen = v.Get()
	})

	v.Set(42)
	if seen != 42 {
		t.Errorf("subscriber read %d, want 42", seen)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	v := New(0, WithScheduler(scheduler.NewFake()))

	calls := 0
	unsubscribe := v.Subscribe(func(int) { calls++ })

	v.Set(1)
	unsubscribe()
	v.Set(2)

	if calls != 1 {
		t.Errorf("expected 1 call before unsubscribe, got %d", calls)
	}

	// Second call must not panic or remove anything else.
	unsubscribe()

	other := 0
	v.Subscribe(func(int) { other++ })
	v.Set(3)
	if other != 1 {
		t.Errorf("unrelated subscriber should still fire, got %d", other)
	}
}

func TestUnsubscribeRemovesOnlyThatListener(t *testing.T) {
	v := New(0, WithScheduler(scheduler.NewFake()))

	a, b := 0, 0
	unsubA := v.Subscribe(func(int) { a++ })
	v.Subscribe(func(int) { b++ })

	unsubA()
	v.Set(1)

	if a != 0 {
		t.Errorf("unsubscribed listener fired %d times", a)
	}
	if b != 1 {
		t.Errorf("remaining listener expected 1 call, got %d", b)
	}
}

func TestOnErrorLastRegistrationWins(t *testing.T) {
	fake := scheduler.NewFake()
	v := New(0, WithScheduler(fake))

	first, second := 0, 0
	v.OnError(func(error) { first++ })
	v.OnError(func(error) { second++ })

	// Drive an error through the active generation.
	gen := v.beginDriver()
	v.reportError(gen, ErrNoTransform)

	if first != 0 {
		t.Errorf("replaced handler fired %d times", first)
	}
	if second != 1 {
		t.Errorf("active handler expected 1 call, got %d", second)
	}
}

func TestDropIsIdempotent(t *testing.T) {
	fake := scheduler.NewFake()
	v := New(0, WithScheduler(fake))

	dropped := 0
	v.OnDropped(func() { dropped++ })

	v.Drop()
	v.Drop()

	if dropped != 1 {
		t.Errorf("dropped handler expected 1 call, got %d", dropped)
	}
	if !v.IsDropped() {
		t.Error("IsDropped should report true")
	}
}

func TestSetAfterDropPanics(t *testing.T) {
	v := New(0, WithScheduler(scheduler.NewFake()))
	v.Drop()

	defer func() {
		if r := recover(); r != ErrDropped {
			t.Errorf("expected panic with ErrDropped, got %v", r)
		}
	}()
	v.Set(1)
}

func TestDropDefersNotifierDisposal(t *testing.T) {
	fake := scheduler.NewFake()
	v := New(0, WithScheduler(fake))

	v.Drop()

	if v.notifier.Disposed() {
		t.Error("notifier must not be disposed synchronously during Drop")
	}

	fake.RunIdle()
	if !v.notifier.Disposed() {
		t.Error("notifier should be disposed on the idle pass")
	}
}

func TestGetAfterDropStillReads(t *testing.T) {
	v := New(7, WithScheduler(scheduler.NewFake()))
	v.Drop()

	if v.Get() != 7 {
		t.Errorf("expected 7 after drop, got %d", v.Get())
	}
}

func TestWithEquals(t *testing.T) {
	type user struct {
		ID   int
		Name string
	}

	v := New(user{ID: 1, Name: "Alice"}, WithScheduler(scheduler.NewFake())).
		WithEquals(func(a, b user) bool { return a.ID == b.ID })

	calls := 0
	v.Subscribe(func(user) { calls++ })

	v.Set(user{ID: 1, Name: "Bob"})
	if calls != 0 {
		t.Errorf("same ID should not notify, got %d calls", calls)
	}

	v.Set(user{ID: 2, Name: "Bob"})
	if calls != 1 {
		t.Errorf("new ID should notify once, got %d calls", calls)
	}
}

func TestDeepEqualityForSlices(t *testing.T) {
	v := New([]int{1, 2}, WithScheduler(scheduler.NewFake()))

	calls := 0
	v.Subscribe(func([]int) { calls++ })

	v.Set([]int{1, 2})
	if calls != 0 {
		t.Errorf("structurally equal slice should not notify, got %d", calls)
	}

	v.Set([]int{1, 2, 3})
	if calls != 1 {
		t.Errorf("changed slice should notify once, got %d", calls)
	}
}

func TestEqualityWithUncomparableInterfaceField(t *testing.T) {
	// The struct type is comparable but a value holding a slice in the
	// interface field is not; == on such values panics at runtime.
	type box struct{ V any }

	v := New(box{V: []int{1}}, WithScheduler(scheduler.NewFake()))

	calls := 0
	v.Subscribe(func(box) { calls++ })

	v.Set(box{V: []int{2}})
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}

	v.Set(box{V: []int{2}})
	if calls != 1 {
		t.Errorf("deep-equal value should not notify, got %d calls", calls)
	}

	v.Set(box{V: 3})
	if calls != 2 {
		t.Errorf("expected 2 notifications, got %d", calls)
	}
}

func TestStringRendering(t *testing.T) {
	v := New(42, WithScheduler(scheduler.NewFake()))
	if got := v.String(); got != "Variable[42]" {
		t.Errorf("expected Variable[42], got %q", got)
	}
}

func TestVariableIDsUnique(t *testing.T) {
	fake := scheduler.NewFake()
	a := New(0, WithScheduler(fake))
	b := New(0, WithScheduler(fake))
	if a.ID() == b.ID() {
		t.Errorf("expected distinct IDs, both %d", a.ID())
	}
}
