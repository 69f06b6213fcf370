package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"lockreact/pkg/realtime"
)

// DefaultTickInterval is how often a session's render loop advances play time.
const DefaultTickInterval = 250 * time.Millisecond

// DefaultJanitorInterval is the sweep interval used when none is given.
const DefaultJanitorInterval = time.Minute

// Store holds sessions and delegates to realtime.Registry for broadcast and render loops.
type Store struct {
	r            *realtime.Registry[*Session]
	clock        clockwork.Clock
	tickInterval time.Duration
	opts         []Option
}

// NewStore creates an in-memory session store. opts apply to every session it creates.
func NewStore(clock clockwork.Clock, tickInterval time.Duration, opts ...Option) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Store{
		r:            realtime.NewRegistry[*Session](clock),
		clock:        clock,
		tickInterval: tickInterval,
		opts:         opts,
	}
}

// CreateSession initializes a session and registers its broadcaster. extra
// options apply after the store's own, so they may override them.
func (s *Store) CreateSession(extra ...Option) *Session {
	id := uuid.NewString()
	opts := make([]Option, 0, len(s.opts)+len(extra)+3)
	opts = append(opts, WithClock(s.clock))
	opts = append(opts, s.opts...)
	opts = append(opts, extra...)
	opts = append(opts,
		WithID(id),
		WithNotify(func(ev realtime.Event) {
			s.r.Publish(id, ev)
			s.r.Wake(id)
		}),
	)
	sess := NewSession(opts...)
	s.r.Create(id, sess)
	log.Info().Str("session_id", id).Int("sessions", s.r.Len()).Msg("session created")
	return sess
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	e, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return e.State, true
}

// Delete closes the session and drops it with its subscribers and render loop.
func (s *Store) Delete(id string) {
	if sess, ok := s.GetSession(id); ok {
		sess.Close()
	}
	s.r.Delete(id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the event broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update.
func (s *Store) Publish(id string, event realtime.Event) {
	s.r.Publish(id, event)
}

// EnsureTickLoop starts the session's render loop if not already running. Each
// tick advances active play time and publishes EventTick. Session events wake
// the loop so play time is current right after an input or pause.
func (s *Store) EnsureTickLoop(id string) {
	started := s.r.RunLoop(id, s.tickInterval, func(sess *Session, now time.Time) ([]realtime.Event, bool) {
		sess.Tick(now)
		return []realtime.Event{EventTick}, false
	})
	if started {
		log.Debug().Str("session_id", id).Dur("interval", s.tickInterval).Msg("tick loop started")
	}
}

// Sweep drops sessions that nobody watches and nobody touched for idle.
// It returns how many were removed.
func (s *Store) Sweep(now time.Time, idle time.Duration) int {
	var stale []string
	s.r.Range(func(e *realtime.Entry[*Session]) bool {
		if now.Sub(e.State.LastActivity()) < idle {
			return true
		}
		if hub, ok := s.r.Broadcaster(e.ID); ok && hub.Len() > 0 {
			return true
		}
		stale = append(stale, e.ID)
		return true
	})
	for _, id := range stale {
		s.Delete(id)
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done. A
// non-positive interval falls back to DefaultJanitorInterval.
func (s *Store) RunJanitor(ctx context.Context, every, idle time.Duration) {
	if every <= 0 {
		every = DefaultJanitorInterval
	}
	ticker := s.clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := s.Sweep(s.clock.Now(), idle); n > 0 {
				log.Info().Int("removed", n).Int("sessions", s.r.Len()).Msg("swept idle sessions")
			}
		}
	}
}
