package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleAndFire(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var fired int32
	done := make(chan struct{})

	err := tm.Schedule("task-1", time.Now().Add(20*time.Millisecond), func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire within 1s")
	}

	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Errorf("expected callback to fire once, fired %d times", n)
	}
}

func TestCancel(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var fired int32
	err := tm.Schedule("task-1", time.Now().Add(50*time.Millisecond), func() {
		atomic.AddInt32(&fired, 1)
	})
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	if !tm.Cancel("task-1") {
		t.Error("Cancel returned false for a scheduled task")
	}
	if tm.Cancel("task-1") {
		t.Error("Cancel returned true for an already cancelled task")
	}

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Errorf("cancelled task fired %d times", n)
	}
}

func TestRescheduleReplacesTask(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var firstFired, secondFired int32
	done := make(chan struct{})

	if err := tm.Schedule("conn-1", time.Now().Add(30*time.Millisecond), func() {
		atomic.AddInt32(&firstFired, 1)
	}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	// Rescheduling with the same ID replaces the pending callback.
	if err := tm.Schedule("conn-1", time.Now().Add(60*time.Millisecond), func() {
		atomic.AddInt32(&secondFired, 1)
		close(done)
	}); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rescheduled timer did not fire within 1s")
	}

	if n := atomic.LoadInt32(&firstFired); n != 0 {
		t.Errorf("replaced task fired %d times", n)
	}
	if n := atomic.LoadInt32(&secondFired); n != 1 {
		t.Errorf("expected rescheduled task to fire once, fired %d times", n)
	}
}

func TestOrderedExpiry(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup
	wg.Add(3)

	record := func(id string) func() {
		return func() {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			wg.Done()
		}
	}

	now := time.Now()
	tm.Schedule("c", now.Add(90*time.Millisecond), record("c"))
	tm.Schedule("a", now.Add(30*time.Millisecond), record("a"))
	tm.Schedule("b", now.Add(60*time.Millisecond), record("b"))

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("not all timers fired within 2s")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected firing order [a b c], got %v", order)
	}
}

func TestScheduleAfterStop(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	tm.Stop()

	err := tm.Schedule("task-1", time.Now().Add(time.Millisecond), func() {})
	if err != ErrManagerStopped {
		t.Errorf("expected ErrManagerStopped, got %v", err)
	}
}

func TestStats(t *testing.T) {
	tm := NewTimerManager()
	tm.Start()
	defer tm.Stop()

	tm.Schedule("a", time.Now().Add(time.Hour), func() {})
	tm.Schedule("b", time.Now().Add(time.Hour), func() {})

	stats := tm.Stats()
	if stats.ScheduledTasks != 2 {
		t.Errorf("expected 2 scheduled tasks, got %d", stats.ScheduledTasks)
	}

	tm.Cancel("a")
	stats = tm.Stats()
	if stats.ScheduledTasks != 1 {
		t.Errorf("expected 1 scheduled task after cancel, got %d", stats.ScheduledTasks)
	}
}
