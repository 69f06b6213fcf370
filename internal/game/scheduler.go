package game

import (
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"

	"lockreact/pkg/realtime"
)

// DefaultGraceDelay is the pause between a round's resolution and the next prompt.
const DefaultGraceDelay = 100 * time.Millisecond

// Round is the live prompt. A zero Target means between rounds.
type Round struct {
	Target    Indicator
	StartedAt time.Time
	Deadline  time.Duration
}

// Active reports whether a prompt is live.
func (r Round) Active() bool {
	return r.Target != ""
}

// RoundScheduler owns the active prompt, its deadline timer and the grace
// timer that starts the next prompt. It is not safe for concurrent use; the
// owning Session serializes access and claims fired handles under its lock.
type RoundScheduler struct {
	clock      clockwork.Clock
	rng        *rand.Rand
	indicators []Indicator
	grace      time.Duration

	round    Round
	deadline *realtime.OneShot
	next     *realtime.OneShot
}

// NewRoundScheduler creates an idle scheduler.
func NewRoundScheduler(clock clockwork.Clock, rng *rand.Rand, grace time.Duration) *RoundScheduler {
	return &RoundScheduler{
		clock:      clock,
		rng:        rng,
		indicators: Indicators,
		grace:      grace,
		deadline:   realtime.NewOneShot(clock),
		next:       realtime.NewOneShot(clock),
	}
}

// StartNext picks a target uniformly at random, stamps its start time and arms
// the deadline. Any previously armed timer is replaced.
func (r *RoundScheduler) StartNext(window time.Duration, onExpire func(realtime.Handle)) Round {
	r.next.Cancel()
	r.round = Round{
		Target:    r.indicators[r.rng.Intn(len(r.indicators))],
		StartedAt: r.clock.Now(),
		Deadline:  window,
	}
	r.deadline.Schedule(window, onExpire)
	return r.round
}

// Resolve clears the active prompt and cancels its deadline.
func (r *RoundScheduler) Resolve() {
	r.round = Round{}
	r.deadline.Cancel()
}

// ScheduleNext arms the grace delay before the next prompt.
func (r *RoundScheduler) ScheduleNext(onReady func(realtime.Handle)) {
	r.next.Schedule(r.grace, onReady)
}

// CancelPending clears any deadline or grace timer without firing it.
func (r *RoundScheduler) CancelPending() {
	r.deadline.Cancel()
	r.next.Cancel()
}

// ClaimDeadline consumes a fired deadline handle if it is still current.
func (r *RoundScheduler) ClaimDeadline(h realtime.Handle) bool {
	return r.deadline.Claim(h)
}

// ClaimNext consumes a fired grace handle if it is still current.
func (r *RoundScheduler) ClaimNext(h realtime.Handle) bool {
	return r.next.Claim(h)
}

// Current returns the active prompt.
func (r *RoundScheduler) Current() Round {
	return r.round
}

// Pending reports which timers are armed.
func (r *RoundScheduler) Pending() (deadline, next bool) {
	return r.deadline.Pending(), r.next.Pending()
}
