package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lockreact/pkg/realtime"
)

// Outcome is how a player input was adjudicated.
type Outcome string

const (
	OutcomeIgnored Outcome = "ignored"
	OutcomeHit     Outcome = "hit"
	OutcomeLate    Outcome = "late"
	OutcomeWrong   Outcome = "wrong"
)

// Counters are the session tallies. All only grow, except CurrentStreak which
// drops to zero on any wrong, late or timed-out prompt.
type Counters struct {
	Correct       int `json:"correct"`
	Wrong         int `json:"wrong"`
	TotalInputs   int `json:"total_inputs"`
	TotalPrompts  int `json:"total_prompts"`
	MissedPrompts int `json:"missed_prompts"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// sessionClock is the elapsed-time bookkeeping. active only accrues while
// unpaused, advanced by Tick.
type sessionClock struct {
	start        time.Time
	pausedTotal  time.Duration
	active       time.Duration
	lastTick     time.Time
	paused       bool
	pauseStarted time.Time
}

// Session is one player's game: the round lifecycle, scoring and timing state.
// Operations and timer expiries are processed one at a time under mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	clock        clockwork.Clock
	sched        *RoundScheduler
	logger       zerolog.Logger
	notify       func(realtime.Event)
	reactions    []float64
	counters     Counters
	timing       sessionClock
	windowMs     int
	lastActivity time.Time
	closed       bool
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	id     string
	clock  clockwork.Clock
	rng    *rand.Rand
	grace  time.Duration
	notify func(realtime.Event)
	logger *zerolog.Logger
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(o *sessionOptions) { o.id = id }
}

// WithClock drives timers and timestamps from clock.
func WithClock(clock clockwork.Clock) Option {
	return func(o *sessionOptions) { o.clock = clock }
}

// WithRand sets the source used to pick targets.
func WithRand(rng *rand.Rand) Option {
	return func(o *sessionOptions) { o.rng = rng }
}

// WithGraceDelay overrides the pause between resolution and the next prompt.
func WithGraceDelay(d time.Duration) Option {
	return func(o *sessionOptions) { o.grace = d }
}

// WithLogger sets the base logger. Sessions default to the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *sessionOptions) { o.logger = &l }
}

// WithNotify registers a callback for state change events. It is called
// outside the session lock.
func WithNotify(fn func(realtime.Event)) Option {
	return func(o *sessionOptions) { o.notify = fn }
}

// NewSession creates a paused session with an empty log and the initial window.
func NewSession(opts ...Option) *Session {
	o := sessionOptions{grace: DefaultGraceDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.grace <= 0 {
		o.grace = DefaultGraceDelay
	}
	base := log.Logger
	if o.logger != nil {
		base = *o.logger
	}

	now := o.clock.Now()
	s := &Session{
		ID:        o.id,
		CreatedAt: now,
		clock:     o.clock,
		sched:     NewRoundScheduler(o.clock, o.rng, o.grace),
		logger:    base.With().Str("session_id", o.id).Logger(),
		notify:    o.notify,
	}
	s.timing.start = now
	s.resetLocked(now)
	return s
}

// OnInput adjudicates a player input against the active prompt. source is a
// directional key or an indicator name; anything unmapped counts as wrong.
// Inputs while paused or between rounds are ignored.
func (s *Session) OnInput(source string) Outcome {
	s.mu.Lock()
	outcome := s.onInputLocked(source)
	s.mu.Unlock()
	if outcome != OutcomeIgnored {
		s.emit(EventRound, EventStats)
	}
	return outcome
}

func (s *Session) onInputLocked(source string) Outcome {
	if s.closed || s.timing.paused {
		return OutcomeIgnored
	}
	round := s.sched.Current()
	if !round.Active() {
		return OutcomeIgnored
	}

	now := s.clock.Now()
	s.lastActivity = now
	s.counters.TotalInputs++
	reaction := now.Sub(round.StartedAt)

	var outcome Outcome
	switch {
	case round.Target.Accepts(source) && reaction <= round.Deadline:
		outcome = OutcomeHit
		s.reactions = append(s.reactions, float64(reaction)/float64(time.Millisecond))
		s.counters.Correct++
		s.counters.CurrentStreak++
		if s.counters.CurrentStreak > s.counters.LongestStreak {
			s.counters.LongestStreak = s.counters.CurrentStreak
		}
		s.windowMs = NextWindow(s.windowMs)
	case round.Target.Accepts(source):
		outcome = OutcomeLate
		s.counters.MissedPrompts++
		s.counters.CurrentStreak = 0
	default:
		outcome = OutcomeWrong
		s.counters.Wrong++
		s.counters.MissedPrompts++
		s.counters.CurrentStreak = 0
	}

	s.sched.Resolve()
	s.sched.ScheduleNext(s.onGrace)

	s.logger.Debug().
		Str("target", string(round.Target)).
		Str("source", source).
		Str("outcome", string(outcome)).
		Dur("reaction", reaction).
		Int("window_ms", s.windowMs).
		Msg("round resolved by input")
	return outcome
}

// onGrace starts the next prompt once the grace delay elapses.
func (s *Session) onGrace(h realtime.Handle) {
	s.mu.Lock()
	if !s.sched.ClaimNext(h) || s.closed || s.timing.paused {
		s.mu.Unlock()
		return
	}
	s.startNextLocked()
	s.mu.Unlock()
	s.emit(EventRound, EventStats)
}

// onDeadline charges a miss for the unanswered prompt and immediately starts
// the next one.
func (s *Session) onDeadline(h realtime.Handle) {
	s.mu.Lock()
	if !s.sched.ClaimDeadline(h) || s.closed {
		s.mu.Unlock()
		return
	}
	if round := s.sched.Current(); round.Active() {
		s.counters.MissedPrompts++
		s.counters.CurrentStreak = 0
		s.windowMs = NextWindow(s.windowMs)
		s.logger.Debug().
			Str("target", string(round.Target)).
			Int("window_ms", s.windowMs).
			Msg("round timed out")
	}
	s.sched.Resolve()
	s.startNextLocked()
	s.mu.Unlock()
	s.emit(EventRound, EventStats)
}

func (s *Session) startNextLocked() {
	s.sched.StartNext(time.Duration(s.windowMs)*time.Millisecond, s.onDeadline)
	s.counters.TotalPrompts++
}

// TogglePause pauses or resumes. Pausing drops the live prompt without
// penalty; resuming starts a new prompt after the grace delay. It returns the
// new paused state.
func (s *Session) TogglePause() bool {
	s.mu.Lock()
	if s.closed {
		paused := s.timing.paused
		s.mu.Unlock()
		return paused
	}
	now := s.clock.Now()
	s.lastActivity = now
	s.sched.Resolve()
	s.sched.CancelPending()
	if s.timing.paused {
		s.timing.pausedTotal += now.Sub(s.timing.pauseStarted)
		s.timing.paused = false
		s.timing.lastTick = now
		s.sched.ScheduleNext(s.onGrace)
	} else {
		s.timing.paused = true
		s.timing.pauseStarted = now
	}
	paused := s.timing.paused
	s.mu.Unlock()

	s.logger.Debug().Bool("paused", paused).Msg("pause toggled")
	s.emit(EventPause, EventRound)
	return paused
}

// Reset returns the session to its initial state. The session start time is
// kept for overall elapsed reporting.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resetLocked(s.clock.Now())
	s.mu.Unlock()

	s.logger.Debug().Msg("session reset")
	s.emit(EventReset, EventRound, EventStats)
}

func (s *Session) resetLocked(now time.Time) {
	s.sched.Resolve()
	s.sched.CancelPending()
	s.reactions = nil
	s.counters = Counters{}
	s.windowMs = InitialWindowMs
	s.timing = sessionClock{
		start:        s.timing.start,
		lastTick:     now,
		paused:       true,
		pauseStarted: now,
	}
	s.lastActivity = now
}

// Tick advances active play time by the wall-clock delta since the previous
// tick while unpaused. It never resolves rounds.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !s.timing.paused {
		if d := now.Sub(s.timing.lastTick); d > 0 {
			s.timing.active += d
		}
	}
	s.timing.lastTick = now
}

// Close cancels outstanding timers. Later operations are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.sched.Resolve()
	s.sched.CancelPending()
	s.logger.Debug().Msg("session closed")
}

// LastActivity is when the player last touched the session.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timing.paused
}

// WindowMs is the current reaction window.
func (s *Session) WindowMs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowMs
}

// Reactions returns a copy of the on-time latencies in insertion order.
func (s *Session) Reactions() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.reactions))
	copy(out, s.reactions)
	return out
}

func (s *Session) emit(events ...realtime.Event) {
	if s.notify == nil {
		return
	}
	for _, ev := range events {
		s.notify(ev)
	}
}
