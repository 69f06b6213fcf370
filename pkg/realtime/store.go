package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Entry holds state and a broadcaster for one id.
type Entry[T any] struct {
	ID    string
	State T
	hub   *Broadcaster
}

// Registry manages entries, their broadcasters and their render loops.
type Registry[T any] struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]*Entry[T]
	loops   map[string]context.CancelFunc
	wakes   map[string]chan struct{}
}

// NewRegistry creates an empty registry whose loops tick on clock.
func NewRegistry[T any](clock clockwork.Clock) *Registry[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry[T]{
		clock:   clock,
		entries: make(map[string]*Entry[T]),
		loops:   make(map[string]context.CancelFunc),
		wakes:   make(map[string]chan struct{}),
	}
}

// Create adds an entry with the given id and state, and a new Broadcaster.
func (s *Registry[T]) Create(id string, state T) *Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Entry[T]{ID: id, State: state, hub: NewBroadcaster()}
	s.entries[id] = e
	return e
}

// Get returns the entry by ID if it exists.
func (s *Registry[T]) Get(id string) (*Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Delete removes the entry, stops its loop and closes its subscribers.
func (s *Registry[T]) Delete(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	s.Stop(id)
	if ok {
		e.hub.Close()
	}
}

// Range calls fn for every entry until fn returns false. It iterates over a
// copy, so fn may call back into the registry.
func (s *Registry[T]) Range(fn func(e *Entry[T]) bool) {
	s.mu.RLock()
	snapshot := make([]*Entry[T], 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()
	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// Len reports the number of entries.
func (s *Registry[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Publish notifies subscribers of the entry's broadcaster. Unknown ids are ignored.
func (s *Registry[T]) Publish(id string, event Event) {
	if hub, ok := s.Broadcaster(id); ok {
		hub.Publish(event)
	}
}

// Broadcaster returns the broadcaster for the entry.
func (s *Registry[T]) Broadcaster(id string) (*Broadcaster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.hub, true
}

// TickFunc is called by RunLoop on every interval with the entry's state.
// The returned events are published; stop true exits the loop.
type TickFunc[T any] func(state T, now time.Time) (events []Event, stop bool)

// RunLoop starts a render loop for the entry and reports whether it did. No loop
// starts for an unknown id or when one is already running. The loop exits when
// the entry is deleted, Stop is called, or tick reports stop.
func (s *Registry[T]) RunLoop(id string, interval time.Duration, tick TickFunc[T]) bool {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return false
	}
	if _, ok := s.entries[id]; !ok {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		ticker := s.clock.NewTicker(interval)
		defer func() {
			ticker.Stop()
			cancel()
			s.mu.Lock()
			delete(s.loops, id)
			delete(s.wakes, id)
			s.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
			case <-wake:
			}
			e, ok := s.Get(id)
			if !ok {
				return
			}
			events, stop := tick(e.State, s.clock.Now())
			for _, ev := range events {
				e.hub.Publish(ev)
			}
			if stop {
				return
			}
		}
	}()
	return true
}

// Stop cancels the entry's loop, if any.
func (s *Registry[T]) Stop(id string) {
	s.mu.RLock()
	cancel, ok := s.loops[id]
	s.mu.RUnlock()
	if ok {
		cancel()
	}
}

// Wake makes the entry's loop tick immediately.
func (s *Registry[T]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}
