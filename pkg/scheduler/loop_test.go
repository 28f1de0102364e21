package scheduler

import (
	"sync"
	"testing"
	"time"
)

func TestLoopDispatchFIFO(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup

	wg.Add(3)
	for i := 1; i <= 3; i++ {
		i := i
		l.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("unexpected task order %v", got)
	}
}

func TestLoopIdleRunsAfterTasks(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	// Queue both before the loop can drain, so ordering is observable.
	l.Dispatch(func() {
		l.OnIdle(func() {
			mu.Lock()
			got = append(got, "idle")
			mu.Unlock()
			close(done)
		})
		l.Dispatch(func() {
			mu.Lock()
			got = append(got, "task")
			mu.Unlock()
		})
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle callback never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "task" || got[1] != "idle" {
		t.Errorf("expected task before idle, got %v", got)
	}
}

func TestLoopInterval(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	ticks := make(chan struct{}, 16)
	cancel := l.Interval(5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never arrived", i)
		}
	}
}

func TestLoopIntervalCancelIdempotent(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	cancel := l.Interval(time.Millisecond, func() {})
	cancel()
	cancel() // must not panic on double close
}

func TestLoopAfter(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	fired := make(chan struct{})
	l.After(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot timer never fired")
	}
}

func TestLoopAfterCancel(t *testing.T) {
	l := NewLoop()
	defer l.Stop()

	fired := make(chan struct{}, 1)
	cancel := l.After(50*time.Millisecond, func() { fired <- struct{}{} })
	cancel()

	select {
	case <-fired:
		t.Error("cancelled timer fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestLoopStopDropsQueuedWork(t *testing.T) {
	l := NewLoop()
	l.Stop()

	// Queueing after Stop must not panic and must not run.
	ran := make(chan struct{}, 1)
	l.Dispatch(func() { ran <- struct{}{} })
	l.OnIdle(func() { ran <- struct{}{} })

	select {
	case <-ran:
		t.Error("work ran on a stopped loop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDefaultSchedulerIsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default must return the same loop every time")
	}
}
