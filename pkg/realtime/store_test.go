package realtime

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestRegistry_Create_Get(t *testing.T) {
	s := NewRegistry[string](nil)
	s.Create("s1", "state1")
	e, ok := s.Get("s1")
	if !ok {
		t.Fatal("Get returned false for existing entry")
	}
	if e.ID != "s1" {
		t.Errorf("entry ID %q, want s1", e.ID)
	}
	if e.State != "state1" {
		t.Errorf("entry State %q, want state1", e.State)
	}

	if _, ok := s.Get("nonexistent"); ok {
		t.Error("Get should return false for missing ID")
	}
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}
}

func TestRegistry_Publish(t *testing.T) {
	s := NewRegistry[string](nil)
	s.Create("s1", "x")
	hub, ok := s.Broadcaster("s1")
	if !ok {
		t.Fatal("Broadcaster should exist for created entry")
	}
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("s1", "event1")
	if got := <-ch; got != "event1" {
		t.Errorf("got %q, want event1", got)
	}

	// Unknown ids neither panic nor create entries.
	s.Publish("missing", "event1")
	if _, ok := s.Broadcaster("missing"); ok {
		t.Error("Publish must not create entries")
	}
}

func TestRegistry_DeleteClosesSubscribers(t *testing.T) {
	s := NewRegistry[string](nil)
	s.Create("s1", "x")
	hub, _ := s.Broadcaster("s1")
	ch := hub.Subscribe()

	s.Delete("s1")
	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed by Delete")
	}
	if _, ok := s.Get("s1"); ok {
		t.Error("entry should be gone after Delete")
	}
}

func TestRegistry_Range(t *testing.T) {
	s := NewRegistry[int](nil)
	s.Create("a", 1)
	s.Create("b", 2)
	s.Create("c", 3)
	sum := 0
	s.Range(func(e *Entry[int]) bool {
		sum += e.State
		return true
	})
	if sum != 6 {
		t.Errorf("sum %d, want 6", sum)
	}
	visited := 0
	s.Range(func(e *Entry[int]) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("visited %d, want 1 after early stop", visited)
	}
}

func TestRegistry_RunLoopTicksAndStops(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewRegistry[string](clock)
	s.Create("s1", "x")
	hub, _ := s.Broadcaster("s1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	ticks := 0
	started := s.RunLoop("s1", 50*time.Millisecond, func(state string, now time.Time) ([]Event, bool) {
		ticks++
		return []Event{"tick"}, ticks >= 2
	})
	if !started {
		t.Fatal("loop should start")
	}
	if s.RunLoop("s1", time.Millisecond, func(string, time.Time) ([]Event, bool) { return nil, true }) {
		t.Fatal("a second loop must not start while one runs")
	}

	for i := 0; i < 2; i++ {
		if err := clock.BlockUntilContext(t.Context(), 1); err != nil {
			t.Fatalf("waiting for ticker: %v", err)
		}
		clock.Advance(50 * time.Millisecond)
		select {
		case got := <-ch:
			if got != "tick" {
				t.Errorf("got %q, want tick", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not published", i+1)
		}
	}

	// Once the loop has exited a new one may start.
	deadline := time.Now().Add(2 * time.Second)
	for !s.RunLoop("s1", time.Hour, func(string, time.Time) ([]Event, bool) { return nil, true }) {
		if time.Now().After(deadline) {
			t.Fatal("loop should exit after tick reports stop")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop("s1")
}

func TestRegistry_RunLoopMissingEntry(t *testing.T) {
	s := NewRegistry[string](nil)
	started := s.RunLoop("missing", time.Millisecond, func(string, time.Time) ([]Event, bool) {
		t.Error("tick must not run for a missing entry")
		return nil, true
	})
	if started {
		t.Error("no loop should start for a missing entry")
	}
}

func TestRegistry_WakeTicksImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewRegistry[string](clock)
	s.Create("s1", "x")
	defer s.Delete("s1")
	hub, _ := s.Broadcaster("s1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.RunLoop("s1", time.Hour, func(string, time.Time) ([]Event, bool) {
		return []Event{"tick"}, false
	})
	s.Wake("s1")
	select {
	case got := <-ch:
		if got != "tick" {
			t.Errorf("got %q, want tick", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wake did not tick the loop")
	}
}

func TestRegistry_DeleteStopsLoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewRegistry[string](clock)
	s.Create("s1", "x")
	s.RunLoop("s1", time.Hour, func(string, time.Time) ([]Event, bool) { return nil, false })
	s.Delete("s1")

	// The id is free again once the old loop has cleaned up.
	s.Create("s1", "y")
	defer s.Delete("s1")
	deadline := time.Now().Add(2 * time.Second)
	for !s.RunLoop("s1", time.Hour, func(string, time.Time) ([]Event, bool) { return nil, false }) {
		if time.Now().After(deadline) {
			t.Fatal("loop should stop when its entry is deleted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistry_Wake_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRegistry[string](nil)
	s.Wake("nonexistent")
	s.Stop("nonexistent")
}
